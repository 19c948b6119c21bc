package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	builderapi "github.com/bmue76/leadradar/internal/leadradar/builder-api"
	"github.com/bmue76/leadradar/internal/leadradar/builder"
)

// session клиент API и координатор одной формы.
type session struct {
	client *builderapi.Client
	coord  *builder.Coordinator
}

func newClient() (*builderapi.Client, error) {
	if apiToken == "" {
		return nil, errors.New("no API token: set --token or LEADRADAR_TOKEN")
	}
	return builderapi.New(apiURL, apiToken)
}

func openSession(ctx context.Context, formID string) (*session, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	coord := builder.NewCoordinator(client, formID)
	if err := coord.Load(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return &session{client: client, coord: coord}, nil
}

func (s *session) Close() {
	s.coord.Close()
	s.client.Close()
}

func parseSection(v string) (builder.Section, error) {
	sec := builder.Section(strings.ToUpper(v))
	if !sec.Valid() {
		return "", fmt.Errorf("unknown section %q, want FORM or CONTACT", v)
	}
	return sec, nil
}

// printBuilder выводит поля в порядке показа секций.
func printBuilder(w io.Writer, form builder.Form, store builder.FieldStore) {
	fmt.Fprintf(w, "%s  %s  [%s]\n\n", form.ID, form.Name, form.Status)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sec := range form.SectionOrder() {
		fmt.Fprintf(tw, "%s\n", sec)
		fields := store.Section(sec)
		if len(fields) == 0 {
			fmt.Fprintf(tw, "  (empty)\n")
		}
		for i, f := range fields {
			flags := ""
			if f.Required {
				flags += "*"
			}
			if !f.IsActive {
				flags += " inactive"
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n", i, f.ID, f.Key, f.Type, f.Label, flags)
		}
	}
	tw.Flush()
}

// describeError добавляет к ошибке сервера код и идентификатор запроса.
func describeError(err error) string {
	var se *builder.ServerError
	if errors.As(err, &se) {
		if se.CorrelationID != "" {
			return fmt.Sprintf("%s (code %d, request %s)", se.Message, se.Code, se.CorrelationID)
		}
		return fmt.Sprintf("%s (code %d)", se.Message, se.Code)
	}
	var ve *builder.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
