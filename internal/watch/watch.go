// Package watch reports streams whose metadata changed in the database,
// including changes written by other processes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ChangeSource lists streams modified after a point in time.
type ChangeSource interface {
	ChangedSince(t time.Time) ([]int64, time.Time, error)
}

// Options configures a Watcher.
type Options struct {
	// Debounce coalesces bursts of file events into one query.
	Debounce time.Duration
	// PollInterval also checks for changes on a timer, for filesystems that
	// do not deliver events. Zero disables polling.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Watcher turns database file activity into stream change notifications.
type Watcher struct {
	src    ChangeSource
	dbPath string
	opts   Options
	logger *slog.Logger

	since time.Time
}

// New returns a watcher for the database at dbPath. Only changes made after
// since are reported.
func New(src ChangeSource, dbPath string, since time.Time, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{src: src, dbPath: dbPath, opts: opts, logger: logger, since: since}
}

// relevant reports whether an event touches the database or its journal.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(w.dbPath))
}

// Run watches until ctx is cancelled, sending the ID of every changed stream
// on out. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, out chan<- int64) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := fw.Add(filepath.Dir(w.dbPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.dbPath), err)
	}

	kick := make(chan struct{}, 1)
	trigger := func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if w.relevant(ev) {
					trigger()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.logger.Warn("watch error", "error", err)
			}
		}
	})

	if w.opts.PollInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.opts.PollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					trigger()
				}
			}
		})
	}

	g.Go(func() error {
		// One query per debounce window no matter how many events arrive.
		limiter := rate.NewLimiter(rate.Every(w.opts.Debounce), 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-kick:
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			// Let the burst settle before reading.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.opts.Debounce):
			}
			// Events that arrived during the wait are covered by this query.
			select {
			case <-kick:
			default:
			}
			if err := w.emit(ctx, out); err != nil {
				return err
			}
		}
	})

	return g.Wait()
}

// Check queries for changes once and sends them on out. It must not be
// called while Run is active.
func (w *Watcher) Check(ctx context.Context, out chan<- int64) error {
	return w.emit(ctx, out)
}

func (w *Watcher) emit(ctx context.Context, out chan<- int64) error {
	ids, next, err := w.src.ChangedSince(w.since)
	if err != nil {
		w.logger.Warn("query stream changes", "error", err)
		return nil
	}
	w.since = next
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil
		case out <- id:
		}
	}
	if len(ids) > 0 {
		w.logger.Debug("streams changed", "count", len(ids))
	}
	return nil
}
