package commands

import (
	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/runner"
)

func addFind(topLevel *cobra.Command, ro *RootOptions) {
	f := &runner.Find{}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Highlight the occurrences of a literal pattern.",
		Example: `
marginalia find --doc notes.json --pattern hello
marginalia find --doc notes.json --pattern Hello --case-sensitive --next 2
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Base = ro.base()
			return f.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&f.DocPath, "doc", "d", "", "Document to search.")
	cmd.Flags().StringVarP(&f.Pattern, "pattern", "p", "", "Literal text to find.")
	cmd.Flags().BoolVar(&f.CaseSensitive, "case-sensitive", false, "Match case.")
	cmd.Flags().IntVarP(&f.Next, "next", "n", 0, "Step this many times through the matches to activate one.")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("pattern")

	topLevel.AddCommand(cmd)
}
