package main

import (
	"fmt"
	"strings"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/spf13/cobra"
)

var (
	statusName  string
	statusStart string
)

var statusCmd = &cobra.Command{
	Use:   "status <formId> [DRAFT|ACTIVE|ARCHIVED]",
	Short: "Rename a form, change its status or capture start",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		var patch builder.FormPatch
		if len(args) > 1 {
			st := builder.FormStatus(strings.ToUpper(args[1]))
			patch.Status = &st
		}
		if cmd.Flags().Changed("name") {
			patch.Name = &statusName
		}
		if cmd.Flags().Changed("capture-start") {
			cfg := s.coord.Form().Config
			cfg.CaptureStart = strings.ToUpper(statusStart)
			patch.Config = &cfg
		}

		form, err := s.coord.PatchForm(cmd.Context(), patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  [%s]\n", form.ID, form.Name, form.Status)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusName, "name", "", "New form name")
	statusCmd.Flags().StringVar(&statusStart, "capture-start", "", "FORM_FIRST or CONTACT_FIRST")
}
