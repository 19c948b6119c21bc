package main

import (
	"encoding/json"
	"fmt"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/spf13/cobra"
)

var patchFlags struct {
	label       string
	placeholder string
	helpText    string
	required    bool
	active      bool
	section     string
	config      string
}

var patchCmd = &cobra.Command{
	Use:   "patch <formId> <fieldId>",
	Short: "Change field attributes",
	Long:  "Change only the attributes given as flags. --section moves the field to the end of the other section. --config takes the field config as JSON.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		field, ok := s.coord.Store().Field(args[1])
		if !ok {
			return fmt.Errorf("field %s: %w", args[1], builder.ErrNotFound)
		}

		var patch builder.FieldPatch
		flags := cmd.Flags()
		if flags.Changed("label") {
			patch.Label = &patchFlags.label
		}
		if flags.Changed("placeholder") {
			patch.Placeholder = &patchFlags.placeholder
		}
		if flags.Changed("help") {
			patch.HelpText = &patchFlags.helpText
		}
		if flags.Changed("required") {
			patch.Required = &patchFlags.required
		}
		if flags.Changed("active") {
			patch.IsActive = &patchFlags.active
		}
		if flags.Changed("section") {
			sec, err := parseSection(patchFlags.section)
			if err != nil {
				return err
			}
			patch.Section = &sec
		}
		if flags.Changed("config") {
			cfg, err := builder.ParseConfig(field.Type, json.RawMessage(patchFlags.config))
			if err != nil {
				return err
			}
			patch.Config = &cfg
		}

		updated, err := s.coord.PatchField(cmd.Context(), field.ID, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s) in %s\n", updated.Key, updated.ID, updated.Section)
		return nil
	},
}

func init() {
	patchCmd.Flags().StringVar(&patchFlags.label, "label", "", "Field label")
	patchCmd.Flags().StringVar(&patchFlags.placeholder, "placeholder", "", "Placeholder text")
	patchCmd.Flags().StringVar(&patchFlags.helpText, "help", "", "Help text, simple formatting allowed")
	patchCmd.Flags().BoolVar(&patchFlags.required, "required", false, "Field is required")
	patchCmd.Flags().BoolVar(&patchFlags.active, "active", true, "Field is shown on capture")
	patchCmd.Flags().StringVar(&patchFlags.section, "section", "", "Move to FORM or CONTACT")
	patchCmd.Flags().StringVar(&patchFlags.config, "config", "", "Field config JSON")
}
