package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/wesm/streamview/internal/config"
	"github.com/wesm/streamview/internal/i18n"
	"github.com/wesm/streamview/internal/store"
)

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger

	// errOut receives the verbose error trace.
	errOut io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "streamview",
	Short: "Terminal viewer for stream narrows",
	Long: `streamview shows the message-view header for a narrow (a stream, a
topic, direct messages or a search) in the terminal, and keeps it current
as stream metadata changes.

Streams, colours, descriptions and subscriptions live in a local SQLite
database that the 'stream' subcommands edit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		// Set up logging
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(),
		}))

		// Load config (--home is passed through so it influences
		// where config.toml is loaded from, like STREAMVIEW_HOME).
		var err error
		cfg, err = config.Load(cfgFile, homeDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// Ensure home directory exists on first use
		if err := cfg.EnsureHomeDir(); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.HomeDir, err)
		}

		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && verbose {
		// eris keeps the wrap chain with locations; print it for debugging.
		fmt.Fprintln(errOut, eris.ToString(err, true))
	}
	return err
}

// openStore opens the configured database and makes sure the schema exists.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, eris.Wrap(err, "open database")
	}
	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "init schema")
	}
	return s, nil
}

// newTranslator builds the translator for the configured locale, layering
// the optional translations file over the built-in catalogues.
func newTranslator() (*i18n.Translator, error) {
	var extra []i18n.Catalog
	if cfg.UI.Translations != "" {
		c, err := i18n.LoadCatalog(cfg.UI.Translations)
		if err != nil {
			return nil, eris.Wrap(err, "load translations")
		}
		extra = append(extra, c)
	}
	tr, err := i18n.New(cfg.UI.Locale, extra...)
	if err != nil {
		return nil, eris.Wrapf(err, "locale %q", cfg.UI.Locale)
	}
	return tr, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.streamview/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (overrides STREAMVIEW_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
