package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <formId> <fieldId>",
	Short: "Delete a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.coord.Delete(cmd.Context(), args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[1])
		return nil
	},
}
