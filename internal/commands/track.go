package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/runner"
	"github.com/dshills/marginalia/internal/watcher"
)

func addTrack(topLevel *cobra.Command, ro *RootOptions) {
	t := &runner.Track{}

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Keep a document's annotations in step with edits made by other programs.",
		Long: `Keep a document's annotations in step with edits made by other programs.

The first run records a snapshot of the document. Each later run diffs the
document against its snapshot, moves the snapshot's annotations onto the new
text and stores the result. With --watch the document is tracked on every
change until interrupted.`,
		Example: `
marginalia track --doc notes.json
marginalia track --doc notes.txt --watch
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return err
			}
			t.Base = ro.base()
			t.Store = store

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return t.Do(ctx)
		},
	}

	cmd.Flags().StringVarP(&t.DocPath, "doc", "d", "", "Document to track.")
	cmd.Flags().BoolVarP(&t.Watch, "watch", "w", false, "Keep tracking changes until interrupted.")
	cmd.Flags().DurationVar(&t.Debounce, "debounce", watcher.DefaultDebounceDelay, "Quiet period before a change is processed.")
	_ = cmd.MarkFlagRequired("doc")

	topLevel.AddCommand(cmd)
}

func addSnapshots(topLevel *cobra.Command, ro *RootOptions) {
	s := &runner.Snapshots{}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List tracked documents.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return err
			}
			s.Base = ro.base()
			s.Store = store
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

func addUntrack(topLevel *cobra.Command, ro *RootOptions) {
	u := &runner.Untrack{}

	cmd := &cobra.Command{
		Use:   "untrack",
		Short: "Forget the snapshot of a document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return err
			}
			u.Base = ro.base()
			u.Store = store
			return u.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&u.DocPath, "doc", "d", "", "Document to forget.")
	_ = cmd.MarkFlagRequired("doc")

	topLevel.AddCommand(cmd)
}
