package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/wesm/streamview/internal/richtext"
	"github.com/wesm/streamview/internal/store"
)

var (
	streamColor       string
	streamDescription string
	streamPrivate     bool
	streamWebPublic   bool
	streamSubscribers []int64
	streamDescWidth   int
	streamListJSON    bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Manage streams, their metadata and subscribers",
}

var streamCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a stream",
	Long: `Create a stream.

Examples:
  streamview stream create general --color '#76ce90' --description 'Everything :tada:'
  streamview stream create team --private --subscribe 1,2,3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := normalizeColor(streamColor)
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			st := &store.Stream{
				Name:                args[0],
				Color:               color,
				Description:         streamDescription,
				RenderedDescription: richtext.RenderMarkdown(streamDescription, streamDescWidth),
				InviteOnly:          streamPrivate,
				WebPublic:           streamWebPublic,
			}
			if err := s.UpsertStream(st); err != nil {
				return eris.Wrapf(err, "create stream %q", args[0])
			}
			if len(streamSubscribers) > 0 {
				if err := s.Subscribe(st.ID, streamSubscribers...); err != nil {
					return eris.Wrapf(err, "subscribe to %q", st.Name)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created stream %s (id %d)\n", st.Name, st.ID)
			return nil
		})
	},
}

var streamColorCmd = &cobra.Command{
	Use:   "color <stream> <#rrggbb>",
	Short: "Change a stream's colour",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := normalizeColor(args[1])
		if err != nil {
			return err
		}
		return withStream(args[0], func(s *store.Store, st *store.Stream) error {
			if err := s.SetColor(st.ID, color); err != nil {
				return eris.Wrapf(err, "set colour of %q", st.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stream %s colour set to %s\n", st.Name, color)
			return nil
		})
	},
}

var streamDescribeCmd = &cobra.Command{
	Use:   "describe <stream> <markdown>",
	Short: "Change a stream's description",
	Long: `Set a stream's description. The Markdown source is rendered once and
stored alongside it; @**Name** mentions, <time:...> timestamps and
:emoji: shortcodes are resolved when the header is displayed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStream(args[0], func(s *store.Store, st *store.Stream) error {
			rendered := richtext.RenderMarkdown(args[1], streamDescWidth)
			if err := s.SetDescription(st.ID, args[1], rendered); err != nil {
				return eris.Wrapf(err, "set description of %q", st.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stream %s description updated\n", st.Name)
			return nil
		})
	},
}

var streamRenameCmd = &cobra.Command{
	Use:   "rename <stream> <new-name>",
	Short: "Rename a stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStream(args[0], func(s *store.Store, st *store.Stream) error {
			if err := s.Rename(st.ID, args[1]); err != nil {
				return eris.Wrapf(err, "rename %q", st.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stream %s renamed to %s\n", st.Name, args[1])
			return nil
		})
	},
}

var streamArchiveCmd = &cobra.Command{
	Use:   "archive <stream>",
	Short: "Archive a stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStream(args[0], func(s *store.Store, st *store.Stream) error {
			if err := s.Archive(st.ID); err != nil {
				return eris.Wrapf(err, "archive %q", st.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stream %s archived\n", st.Name)
			return nil
		})
	},
}

var streamSubscribeCmd = &cobra.Command{
	Use:   "subscribe <stream> <user-id>...",
	Short: "Subscribe users to a stream",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeSubscribers(cmd.OutOrStdout(), args, true)
	},
}

var streamUnsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe <stream> <user-id>...",
	Short: "Unsubscribe users from a stream",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeSubscribers(cmd.OutOrStdout(), args, false)
	},
}

var streamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			streams, err := s.ListStreams()
			if err != nil {
				return eris.Wrap(err, "list streams")
			}
			rows := make([]streamRow, 0, len(streams))
			for _, st := range streams {
				n, err := s.SubscriberCount(st.ID)
				if err != nil {
					return eris.Wrapf(err, "count subscribers of %q", st.Name)
				}
				rows = append(rows, streamRow{Stream: st, Subscribers: n})
			}

			if streamListJSON {
				return outputStreamsJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No streams found. Use 'streamview stream create <name>' to add one.")
				return nil
			}
			return outputStreamsTable(cmd.OutOrStdout(), rows, time.Now())
		})
	},
}

type streamRow struct {
	Stream      *store.Stream
	Subscribers int
}

func outputStreamsTable(out io.Writer, rows []streamRow, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tACCESS\tSUBSCRIBERS\tUPDATED")
	fmt.Fprintln(w, "──\t────\t─────\t──────\t───────────\t───────")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Stream.ID, r.Stream.Name, r.Stream.Color, access(r.Stream),
			humanize.Comma(int64(r.Subscribers)),
			humanize.RelTime(r.Stream.UpdatedAt, now, "ago", "from now"),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d stream(s)\n", len(rows))
	return err
}

func outputStreamsJSON(out io.Writer, rows []streamRow) error {
	output := make([]map[string]interface{}, len(rows))
	for i, r := range rows {
		output[i] = map[string]interface{}{
			"id":          r.Stream.ID,
			"name":        r.Stream.Name,
			"color":       r.Stream.Color,
			"description": r.Stream.Description,
			"invite_only": r.Stream.InviteOnly,
			"web_public":  r.Stream.WebPublic,
			"subscribers": r.Subscribers,
			"updated_at":  r.Stream.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// access describes who can see a stream.
func access(st *store.Stream) string {
	switch {
	case st.WebPublic:
		return "web-public"
	case st.InviteOnly:
		return "private"
	default:
		return "public"
	}
}

// normalizeColor validates a hex colour and returns it in #rrggbb form.
// An empty string is passed through so the store default applies.
func normalizeColor(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", eris.Wrapf(err, "invalid colour %q (want #rrggbb)", s)
	}
	return c.Hex(), nil
}

// parseUserIDs parses user ID arguments.
func parseUserIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, eris.Errorf("invalid user id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func changeSubscribers(out io.Writer, args []string, subscribe bool) error {
	ids, err := parseUserIDs(args[1:])
	if err != nil {
		return err
	}
	return withStream(args[0], func(s *store.Store, st *store.Stream) error {
		verb := "subscribed to"
		op := s.Subscribe
		if !subscribe {
			verb = "unsubscribed from"
			op = s.Unsubscribe
		}
		if err := op(st.ID, ids...); err != nil {
			return eris.Wrapf(err, "update subscribers of %q", st.Name)
		}
		fmt.Fprintf(out, "%d user(s) %s %s\n", len(ids), verb, st.Name)
		return nil
	})
}

// lookupStream finds a stream by numeric ID or by name.
func lookupStream(s *store.Store, ref string) (*store.Stream, error) {
	var (
		st  *store.Stream
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		st, err = s.GetStream(id)
	} else {
		st, err = s.StreamByName(ref)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, eris.Errorf("stream %q not found", ref)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "look up stream %q", ref)
	}
	return st, nil
}

func withStore(fn func(s *store.Store) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func withStream(ref string, fn func(s *store.Store, st *store.Stream) error) error {
	return withStore(func(s *store.Store) error {
		st, err := lookupStream(s, ref)
		if err != nil {
			return err
		}
		return fn(s, st)
	})
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.AddCommand(streamCreateCmd, streamColorCmd, streamDescribeCmd, streamRenameCmd,
		streamArchiveCmd, streamSubscribeCmd, streamUnsubscribeCmd, streamListCmd)

	streamCreateCmd.Flags().StringVar(&streamColor, "color", "", "stream colour as #rrggbb")
	streamCreateCmd.Flags().StringVar(&streamDescription, "description", "", "Markdown description")
	streamCreateCmd.Flags().BoolVar(&streamPrivate, "private", false, "invite-only stream")
	streamCreateCmd.Flags().BoolVar(&streamWebPublic, "web-public", false, "visible to anyone")
	streamCreateCmd.Flags().Int64SliceVar(&streamSubscribers, "subscribe", nil, "user IDs to subscribe")

	for _, c := range []*cobra.Command{streamCreateCmd, streamDescribeCmd} {
		c.Flags().IntVar(&streamDescWidth, "wrap", 0, "wrap the rendered description at this width (0 for none)")
	}

	streamListCmd.Flags().BoolVar(&streamListJSON, "json", false, "output as JSON")
}
