package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/spf13/cobra"
)

var libraryKind string

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List field templates that can be added to a form",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := builder.DefaultCatalog()
		items := cat.Items()
		if libraryKind != "" {
			items = cat.ByKind(builder.LibraryKind(strings.ToUpper(libraryKind)))
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Kind, it.Type, it.Label)
		}
		return tw.Flush()
	},
}

func init() {
	libraryCmd.Flags().StringVar(&libraryKind, "kind", "", "Only GENERIC, CONTACT or PRESET items")
}
