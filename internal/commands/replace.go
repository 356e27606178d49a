package commands

import (
	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/runner"
)

func addReplace(topLevel *cobra.Command, ro *RootOptions) {
	r := &runner.Replace{}

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace occurrences of a literal pattern, keeping annotations attached.",
		Example: `
marginalia replace --doc notes.json --pattern colour --with color --all -o notes.json
marginalia replace --doc notes.txt --pattern hello --with hi --index 1
marginalia replace --doc notes.json --map cat=lion --map dog=wolf
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Base = ro.base()
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&r.DocPath, "doc", "d", "", "Document to edit.")
	cmd.Flags().StringVarP(&r.Pattern, "pattern", "p", "", "Literal text to replace.")
	cmd.Flags().StringVarP(&r.With, "with", "w", "", "Replacement text.")
	cmd.Flags().BoolVar(&r.CaseSensitive, "case-sensitive", false, "Match case.")
	cmd.Flags().BoolVarP(&r.All, "all", "a", false, "Replace every occurrence.")
	cmd.Flags().IntVarP(&r.Index, "index", "i", 0, "Occurrence to replace, counting from 0.")
	cmd.Flags().StringToStringVar(&r.Pairs, "map", nil, "Replace several patterns at once, as old=new. Case-sensitive.")
	cmd.Flags().StringVarP(&r.OutPath, "output", "o", "", "Write the result here instead of standard output.")
	_ = cmd.MarkFlagRequired("doc")
	cmd.MarkFlagsMutuallyExclusive("map", "pattern")
	cmd.MarkFlagsMutuallyExclusive("all", "index")

	topLevel.AddCommand(cmd)
}
