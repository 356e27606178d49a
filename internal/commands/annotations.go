package commands

import (
	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/runner"
)

func addAnnotations(topLevel *cobra.Command, ro *RootOptions) {
	l := &runner.List{}

	cmd := &cobra.Command{
		Use:     "annotations",
		Aliases: []string{"ls"},
		Short:   "List the annotations of a document.",
		Example: `
marginalia annotations --doc notes.json
marginalia ls --doc notes.json --kind comment
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l.Base = ro.base()
			return l.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&l.DocPath, "doc", "d", "", "Document to list.")
	cmd.Flags().StringVarP(&l.Kind, "kind", "k", "", "Only list this kind: "+
		string(annotation.KindComment)+", "+string(annotation.KindSuggestion)+", "+string(annotation.KindHighlight)+".")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(annotation.KindComment),
			string(annotation.KindSuggestion),
			string(annotation.KindHighlight),
		}, cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}
