package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/wesm/streamview/internal/fileutil"
	"github.com/wesm/streamview/internal/tui"
	"github.com/wesm/streamview/internal/watch"
)

var (
	tuiNarrow  string
	tuiNoWatch bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Long: `Open an interactive terminal UI showing the header for a narrow.

The header follows stream changes made by other processes (for example
'streamview stream color') while it is open.

Navigation:
  ↑/k, ↓/j    Move through streams
  Enter       Narrow to the selected stream
  /           Edit the narrow in the search bar
  a * @ d     All messages, starred, mentions, direct messages
  r / i       Toggle recent conversations / inbox
  Esc         Close the view, then clear the narrow
  ?           Help
  q           Quit

Hovering the subscriber count shows a tooltip; clicking it shows the
stream settings link.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		tr, err := newTranslator()
		if err != nil {
			return err
		}

		// The alt screen owns the terminal, so logs go to a file.
		logPath := filepath.Join(cfg.HomeDir, "tui.log")
		logFile, err := fileutil.AppendPrivate(logPath)
		if err != nil {
			return eris.Wrapf(err, "open log file %s", logPath)
		}
		defer logFile.Close()
		tuiLogger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel()}))

		ctx := cmd.Context()

		var updates <-chan int64
		if cfg.Watch.Enabled && !tuiNoWatch {
			w := watch.New(s, s.Path(), time.Now(), watch.Options{
				Debounce: cfg.Watch.Debounce.Duration,
				Logger:   tuiLogger,
			})
			var stop func()
			updates, stop = startWatcher(ctx, w, tuiLogger)
			// Runs before the store closes.
			defer stop()
		}

		opts := tui.Options{
			UserID:       cfg.User.ID,
			SelfName:     cfg.User.FullName,
			Narrow:       tuiNarrow,
			Translator:   tr,
			DarkTheme:    cfg.UI.DarkTheme,
			Mouse:        cfg.UI.Mouse,
			TooltipWidth: cfg.UI.TooltipWidth,
			Updates:      updates,
			Logger:       tuiLogger,
		}

		if err := tui.Run(ctx, s, opts); err != nil {
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

// streamWatcher is the part of watch.Watcher the tui command drives.
type streamWatcher interface {
	Run(ctx context.Context, out chan<- int64) error
}

// startWatcher runs w in the background and returns its notifications. The
// returned stop cancels the watcher and waits for it to exit, after which
// the store it reads may be closed.
func startWatcher(ctx context.Context, w streamWatcher, logger *slog.Logger) (<-chan int64, func()) {
	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan int64, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(updates)
		if err := w.Run(ctx, updates); err != nil {
			logger.Warn("stream watcher stopped", "error", err)
		}
	}()
	return updates, func() {
		cancel()
		<-done
	}
}

// logLevel returns the slog level selected by --verbose.
func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVarP(&tuiNarrow, "narrow", "n", "", "initial narrow, e.g. 'stream:general topic:lunch'")
	tuiCmd.Flags().BoolVar(&tuiNoWatch, "no-watch", false, "do not follow stream changes from other processes")
}
