package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/engine/state"
	"github.com/dshills/marginalia/internal/runner"
)

func addReposition(topLevel *cobra.Command, ro *RootOptions) {
	r := &runner.Reposition{}
	var change string

	names := make([]string, 0, len(state.ChangeTypes()))
	for _, t := range state.ChangeTypes() {
		names = append(names, string(t))
	}

	cmd := &cobra.Command{
		Use:   "reposition",
		Short: "Move the annotations of a document onto an edited version of it.",
		Example: `
marginalia reposition --old draft.json --new edited.txt
marginalia reposition --old draft.json --new edited.json -o draft.json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if change != "" {
				t, err := state.ParseChangeType(change)
				if err != nil {
					return err
				}
				r.Change = t
			}
			r.Base = ro.base()
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&r.OldPath, "old", "", "Annotated document before the edit.")
	cmd.Flags().StringVar(&r.NewPath, "new", "", "Document after the edit.")
	cmd.Flags().StringVar(&change, "change", "",
		"Change type of the edit, one of: "+strings.Join(names, ", ")+".")
	cmd.Flags().StringVarP(&r.OutPath, "output", "o", "", "Write the repositioned document here.")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	topLevel.AddCommand(cmd)
}
