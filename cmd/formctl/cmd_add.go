package main

import (
	"fmt"
	"math"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/spf13/cobra"
)

var (
	addSection string
	addIndex   int
)

var addCmd = &cobra.Command{
	Use:   "add <formId> <libraryItemId>",
	Short: "Add a field from the library",
	Long:  "Add a field from the library at --index of --section. Contact fields that already exist are selected instead of created. When the library places the field in another section, it is appended there.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sec, err := parseSection(addSection)
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		index := addIndex
		if index < 0 {
			index = math.MaxInt
		}
		res, err := s.coord.AddFromLibrary(cmd.Context(), args[1], builder.Position{Section: sec, Index: index})
		if err != nil {
			return err
		}
		if res.Selected {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists in %s as %s\n", res.Field.Key, res.Field.Section, res.Field.ID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s\n", res.Field.Key, res.Field.ID, res.Field.Section)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addSection, "section", string(builder.SectionForm), "Drop section: FORM or CONTACT")
	addCmd.Flags().IntVar(&addIndex, "index", -1, "Gap index in the section, -1 appends")
}
