// HTTP клиент BuilderAPI поверх go-retryablehttp. Чтения повторяются при сетевых ошибках и 5xx, изменения отправляются ровно один раз.
//
// Основные возможности:
//   - Реализация интерфейса builder.BuilderAPI.
//   - Bearer токен арендатора в каждом запросе.
//   - Разбор конверта {ok, data} / {ok:false, error} в типизированные ошибки builder.
package builderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/bmue76/leadradar/internal/leadradar/dto"
	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseSize = 4 << 20

var _ builder.BuilderAPI = (*Client)(nil)

type Client struct {
	baseURL *url.URL
	token   string

	read  *retryablehttp.Client
	write *retryablehttp.Client
}

type Option func(*Client)

// WithHTTPClient подменяет транспорт для чтения и записи.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.read.HTTPClient = hc
		c.write.HTTPClient = hc
	}
}

// WithReadRetry настраивает повторы чтения. Изменения не повторяются никогда.
func WithReadRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.read.RetryMax = max
		c.read.RetryWaitMin = waitMin
		c.read.RetryWaitMax = waitMax
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l == nil {
			c.read.Logger = nil
			c.write.Logger = nil
			return
		}
		c.read.Logger = l
		c.write.Logger = l
	}
}

func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	read := retryablehttp.NewClient()
	read.RetryMax = 3
	read.RetryWaitMin = 200 * time.Millisecond
	read.RetryWaitMax = 2 * time.Second
	read.ErrorHandler = retryablehttp.PassthroughErrorHandler
	read.Logger = slog.Default()

	write := retryablehttp.NewClient()
	write.RetryMax = 0
	write.HTTPClient = read.HTTPClient
	write.ErrorHandler = retryablehttp.PassthroughErrorHandler
	write.Logger = slog.Default()

	c := &Client{baseURL: u, token: token, read: read, write: write}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close закрывает простаивающие соединения.
func (c *Client) Close() {
	c.read.HTTPClient.CloseIdleConnections()
	c.write.HTTPClient.CloseIdleConnections()
}

func (c *Client) Load(ctx context.Context, formID string) (builder.Snapshot, error) {
	var snap builder.Snapshot
	err := c.do(ctx, "load", http.MethodGet, builderPath(formID), nil, &snap)
	return snap, err
}

func (c *Client) CreateField(ctx context.Context, formID string, draft builder.FieldDraft) (builder.Field, error) {
	var f builder.Field
	err := c.do(ctx, "create field", http.MethodPost, "api/forms/"+url.PathEscape(formID)+"/fields/", draft, &f)
	return f, err
}

func (c *Client) Reorder(ctx context.Context, formID string, order []string) error {
	if order == nil {
		order = []string{}
	}
	return c.do(ctx, "reorder", http.MethodPatch, builderPath(formID), dto.BuilderOp{Op: dto.OpReorder, Order: order}, nil)
}

func (c *Client) PatchField(ctx context.Context, formID, fieldID string, patch builder.FieldPatch) (builder.Field, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return builder.Field{}, err
	}
	var f builder.Field
	err = c.do(ctx, "patch field", http.MethodPatch, builderPath(formID),
		dto.BuilderOp{Op: dto.OpPatchField, FieldID: fieldID, Patch: raw}, &f)
	return f, err
}

func (c *Client) DuplicateField(ctx context.Context, formID, fieldID string) (builder.Field, error) {
	var f builder.Field
	err := c.do(ctx, "duplicate field", http.MethodPatch, builderPath(formID),
		dto.BuilderOp{Op: dto.OpDuplicateField, FieldID: fieldID}, &f)
	return f, err
}

func (c *Client) DeleteField(ctx context.Context, formID, fieldID string) error {
	return c.do(ctx, "delete field", http.MethodPatch, builderPath(formID),
		dto.BuilderOp{Op: dto.OpDeleteField, FieldID: fieldID}, nil)
}

func (c *Client) PatchForm(ctx context.Context, formID string, patch builder.FormPatch) (builder.Form, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return builder.Form{}, err
	}
	var f builder.Form
	err = c.do(ctx, "patch form", http.MethodPatch, builderPath(formID),
		dto.BuilderOp{Op: dto.OpPatchForm, Patch: raw}, &f)
	return f, err
}

// ListForms формы арендатора. Не входит в BuilderAPI, нужен CLI.
func (c *Client) ListForms(ctx context.Context) ([]dto.FormLight, error) {
	var forms []dto.FormLight
	err := c.do(ctx, "list forms", http.MethodGet, "api/forms/", nil, &forms)
	return forms, err
}

func (c *Client) CreateForm(ctx context.Context, name string) (dto.FormLight, error) {
	var form dto.FormLight
	err := c.do(ctx, "create form", http.MethodPost, "api/forms/", map[string]string{"name": name}, &form)
	return form, err
}

func builderPath(formID string) string {
	return "api/forms/" + url.PathEscape(formID) + "/builder/"
}

// do выполняет запрос и разбирает конверт. out == nil - данные ответа не нужны.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var payload interface{}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	client := c.write
	if method == http.MethodGet {
		client = c.read
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return &builder.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &builder.NetworkError{Op: op, Err: err}
	}

	var env dto.RawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &builder.BadResponseError{Op: op, Status: resp.StatusCode, Reason: "response is not a JSON envelope", Err: err}
	}
	if env.Ok == nil {
		return &builder.BadResponseError{Op: op, Status: resp.StatusCode, Reason: "envelope has no ok flag"}
	}

	if !*env.Ok {
		if env.Error == nil {
			return &builder.BadResponseError{Op: op, Status: resp.StatusCode, Reason: "error envelope without error"}
		}
		correlationID := env.Error.CorrelationID
		if correlationID == "" {
			correlationID = resp.Header.Get("X-Request-Id")
		}
		return &builder.ServerError{
			Op:            op,
			Status:        resp.StatusCode,
			Code:          env.Error.Code,
			Message:       env.Error.Message,
			CorrelationID: correlationID,
		}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return &builder.BadResponseError{Op: op, Status: resp.StatusCode, Reason: "envelope has no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		var ve *builder.ValidationError
		reason := "unexpected data shape"
		if errors.As(err, &ve) {
			reason = "invalid field in response"
		}
		return &builder.BadResponseError{Op: op, Status: resp.StatusCode, Reason: reason, Err: err}
	}
	return nil
}
