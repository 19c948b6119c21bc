package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List or create forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		return formsListCmd.RunE(cmd, args)
	},
}

var formsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenant forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		forms, err := client.ListForms(cmd.Context())
		if err != nil {
			return err
		}
		if len(forms) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No forms yet. Create one with 'formctl forms create <name>'.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, f := range forms {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Status, f.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var formsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a draft form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		form, err := client.CreateForm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q\n", form.ID, form.Name)
		return nil
	},
}

func init() {
	formsCmd.AddCommand(formsListCmd)
	formsCmd.AddCommand(formsCreateCmd)
}
