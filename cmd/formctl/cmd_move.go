package main

import (
	"fmt"
	"math"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/spf13/cobra"
)

var (
	moveSection string
	moveIndex   int
)

var moveCmd = &cobra.Command{
	Use:   "move <formId> <fieldId>",
	Short: "Move a field to a gap index, possibly in the other section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		sec := builder.Section("")
		if moveSection == "" {
			f, ok := s.coord.Store().Field(args[1])
			if !ok {
				return fmt.Errorf("field %s: %w", args[1], builder.ErrNotFound)
			}
			sec = f.Section
		} else if sec, err = parseSection(moveSection); err != nil {
			return err
		}

		index := moveIndex
		if index < 0 {
			index = math.MaxInt
		}
		if err := s.coord.Move(cmd.Context(), args[1], builder.Position{Section: sec, Index: index}); err != nil {
			return fmt.Errorf("%w (run 'formctl show %s' to see the saved order)", err, args[0])
		}
		printBuilder(cmd.OutOrStdout(), s.coord.Form(), s.coord.Store())
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveSection, "section", "", "Target section, defaults to the field's own")
	moveCmd.Flags().IntVar(&moveIndex, "index", -1, "Gap index before the move, -1 appends")
}
