package commands

import (
	"os/user"

	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/runner"
)

func addComment(topLevel *cobra.Command, ro *RootOptions) {
	c := &runner.Comment{}

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, reply to, resolve or remove a comment.",
		Long: `Add, reply to, resolve or remove a comment.

New comments cover the range --start to --end of the document's text, where
each block boundary counts as two characters.`,
		Example: `
marginalia comment --doc notes.json --start 6 --end 11 -m "which world?"
marginalia comment --doc notes.json --id 3f0c... -m "this one"
marginalia comment --doc notes.json --id 3f0c... --resolve
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Author == "" {
				if u, err := user.Current(); err == nil {
					c.Author = u.Username
				}
			}
			c.Base = ro.base()
			return c.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&c.DocPath, "doc", "d", "", "Document to annotate.")
	cmd.Flags().IntVar(&c.Start, "start", 0, "Start offset of a new comment.")
	cmd.Flags().IntVar(&c.End, "end", 0, "End offset of a new comment.")
	cmd.Flags().StringVar(&c.Author, "author", "", "Comment author. Defaults to the current user.")
	cmd.Flags().StringVarP(&c.Message, "message", "m", "", "Comment or reply text.")
	cmd.Flags().StringVar(&c.ID, "id", "", "Existing comment to reply to, resolve or remove.")
	cmd.Flags().BoolVar(&c.Resolve, "resolve", false, "Mark the comment resolved.")
	cmd.Flags().BoolVar(&c.Remove, "remove", false, "Remove the comment.")
	cmd.Flags().StringVarP(&c.OutPath, "output", "o", "", "Write the result here instead of rewriting the document.")
	_ = cmd.MarkFlagRequired("doc")
	cmd.MarkFlagsMutuallyExclusive("resolve", "remove")

	topLevel.AddCommand(cmd)
}
