// Package commands wires the runners to the marginalia command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/logging"
	"github.com/dshills/marginalia/internal/runner"
	"github.com/dshills/marginalia/internal/snapshot"
)

// Version information, set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootOptions holds the global flags and the state they produce.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Color      string
	Diff       string
	StoreDir   string

	config *config.Config
	logger *slog.Logger
	out    io.Writer
}

// New returns the root command.
func New() *cobra.Command {
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "marginalia",
		Short: "Keep comments and highlights attached to text as it is edited.",
		Long: `marginalia moves annotations (comments, suggestions, highlights) to follow
the text they mark when a document is edited, and finds or replaces text
without losing them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.setup(cmd.Context(), cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&ro.ConfigPath, "config", "c", "",
		"Configuration file (.toml, .yaml). Defaults to ~/.marginalia/config.toml when present.")
	flags.StringVar(&ro.LogLevel, "log-level", "", "Log level: debug, info, warn, error.")
	flags.StringVar(&ro.LogFormat, "log-format", "", "Log format: text, json.")
	flags.StringVar(&ro.Color, "color", "auto", "Colorize output: auto, always, never.")
	flags.StringVar(&ro.Diff, "diff", "", "Diff algorithm: dmp, myers.")
	flags.StringVar(&ro.StoreDir, "store-dir", "", "Snapshot store directory.")

	AddCommands(cmd, ro)
	return cmd
}

// AddCommands registers every subcommand on topLevel.
func AddCommands(topLevel *cobra.Command, ro *RootOptions) {
	addReposition(topLevel, ro)
	addFind(topLevel, ro)
	addReplace(topLevel, ro)
	addComment(topLevel, ro)
	addAnnotations(topLevel, ro)
	addTrack(topLevel, ro)
	addSnapshots(topLevel, ro)
	addUntrack(topLevel, ro)
	addVersion(topLevel)
}

// DefaultConfigPath is the configuration file read when --config is not
// given. It may be absent.
const DefaultConfigPath = "~/.marginalia/config.toml"

// setup loads configuration, applies flag overrides and initialises
// logging and color output.
func (ro *RootOptions) setup(ctx context.Context, out io.Writer) error {
	var opts []config.Option
	if ro.ConfigPath != "" {
		opts = append(opts, config.WithFile(ro.ConfigPath))
	} else if path, err := homedir.Expand(DefaultConfigPath); err == nil {
		opts = append(opts, config.WithOptionalFile(path))
	}

	cfg := config.New(opts...)
	if err := cfg.Load(ctx); err != nil {
		return err
	}

	overrides := []struct {
		path  string
		value string
	}{
		{"logging.level", ro.LogLevel},
		{"logging.format", ro.LogFormat},
		{"diff.algorithm", ro.Diff},
		{"store.dir", ro.StoreDir},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := cfg.Set(o.path, o.value); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lc := cfg.Logging()
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(lc.Format)
	if err != nil {
		return err
	}
	ro.logger = logging.Init(level, format)

	switch ro.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		f, ok := out.(*os.File)
		color.NoColor = !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	default:
		return fmt.Errorf("unknown --color value %q", ro.Color)
	}

	if out == os.Stdout {
		out = color.Output
	}
	ro.config = cfg
	ro.out = out
	return nil
}

// base returns the runner inputs derived from the global flags.
func (ro *RootOptions) base() runner.Base {
	return runner.Base{Config: ro.config, Logger: ro.logger, Out: ro.out}
}

// openStore opens the snapshot store described by the configuration.
func (ro *RootOptions) openStore() (*snapshot.Store, error) {
	sc := ro.config.Store()
	return snapshot.Open(snapshot.Options{
		Dir:          sc.Dir,
		CacheSizeMax: uint64(max(sc.CacheSizeMax, 0)),
		Compress:     sc.Compress,
		Logger:       ro.logger,
	})
}
