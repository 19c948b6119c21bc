package main

import "github.com/spf13/cobra"

var showCmd = &cobra.Command{
	Use:   "show <formId>",
	Short: "Show form fields by section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		printBuilder(cmd.OutOrStdout(), s.coord.Form(), s.coord.Store())
		return nil
	},
}
