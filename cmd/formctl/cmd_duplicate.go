package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <formId> <fieldId>",
	Short: "Copy a field to the end of its section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		clone, err := s.coord.Duplicate(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Duplicated as %s (%s)\n", clone.Key, clone.ID)
		return nil
	},
}
