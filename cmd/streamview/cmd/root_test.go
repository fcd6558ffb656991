package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// withTestSubcommand registers sub on the real root command for the
// duration of the test and points --home at a temporary directory. Package
// state touched by PersistentPreRunE and the verbose flag is restored on
// cleanup.
func withTestSubcommand(t *testing.T, sub *cobra.Command) (home string, stderr *bytes.Buffer) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("STREAMVIEW_HOME", home)

	stderr = &bytes.Buffer{}
	prevCfg, prevLogger, prevErrOut := cfg, logger, errOut
	errOut = stderr
	rootCmd.SetErr(io.Discard)
	rootCmd.AddCommand(sub)

	t.Cleanup(func() {
		rootCmd.RemoveCommand(sub)
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		cfg, logger, errOut = prevCfg, prevLogger, prevErrOut
		verbose = false
		homeDir = ""
	})
	return home, stderr
}

func TestExecuteContextCancellationPropagates(t *testing.T) {
	var sawCancel atomic.Bool
	started := make(chan struct{})

	home, _ := withTestSubcommand(t, &cobra.Command{
		Use: "wait-for-cancel",
		RunE: func(cmd *cobra.Command, args []string) error {
			close(started)
			select {
			case <-cmd.Context().Done():
				sawCancel.Store(true)
				return cmd.Context().Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	})
	rootCmd.SetArgs([]string{"--home", home, "wait-for-cancel"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- ExecuteContext(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("command did not start in time")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ExecuteContext error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command did not return after cancellation")
	}
	if !sawCancel.Load() {
		t.Error("command did not observe cancellation")
	}
	if cfg == nil || cfg.HomeDir != home {
		t.Errorf("config not loaded from --home %s", home)
	}
}

func TestExecuteContextVerboseError(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantTrace bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, stderr := withTestSubcommand(t, &cobra.Command{
				Use: "fail",
				RunE: func(cmd *cobra.Command, args []string) error {
					return eris.Wrap(errors.New("boom"), "load streams")
				},
			})
			args := []string{"--home", home, "fail"}
			if tt.verbose {
				args = append([]string{"-v"}, args...)
			}
			rootCmd.SetArgs(args)

			err := ExecuteContext(context.Background())
			if err == nil || !strings.Contains(err.Error(), "load streams") {
				t.Fatalf("ExecuteContext error = %v, want wrapped load streams error", err)
			}

			out := stderr.String()
			if !tt.wantTrace {
				if out != "" {
					t.Errorf("unexpected trace without --verbose: %q", out)
				}
				return
			}
			for _, want := range []string{"load streams", "boom", "TestExecuteContextVerboseError"} {
				if !strings.Contains(out, want) {
					t.Errorf("verbose trace missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string][]string{
		"":       {"header", "stream", "tui", "version"},
		"stream": {"archive", "color", "create", "describe", "list", "rename", "subscribe", "unsubscribe"},
	}
	for parent, names := range want {
		c := rootCmd
		if parent != "" {
			var err error
			c, _, err = rootCmd.Find([]string{parent})
			if err != nil {
				t.Fatalf("Find(%s): %v", parent, err)
			}
		}
		for _, name := range names {
			if sub, _, err := c.Find([]string{name}); err != nil || sub == c {
				t.Errorf("%s %s not registered", parent, name)
			}
		}
	}
}
