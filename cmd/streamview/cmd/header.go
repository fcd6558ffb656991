package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/wesm/streamview/internal/header"
	"github.com/wesm/streamview/internal/narrow"
	"github.com/wesm/streamview/internal/richtext"
	"github.com/wesm/streamview/internal/store"
)

var (
	headerWidth  int
	headerRecent bool
	headerInbox  bool
)

var headerCmd = &cobra.Command{
	Use:   "header [narrow]",
	Short: "Print the message-view header for a narrow",
	Long: `Render the header once for a narrow and print it.

Common narrows print the title bar. Other narrows are shown in the search
bar, so the command prints the search string instead.

Examples:
  streamview header 'stream:general'
  streamview header 'is:starred'
  streamview header --recent
  streamview header 'stream:general outage'`,
	Args: cobra.MaximumNArgs(1),
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

		var narrowStr string
		if len(args) == 1 {
			narrowStr = args[0]
		}
		out := headerOutput{
			views: oneShotViews{recent: headerRecent, inbox: headerInbox},
			color: colorEnabled(cmd.OutOrStdout()),
		}
		return out.render(cmd.OutOrStdout(), s, narrowStr, header.Options{
			Subscribers:   store.NewPeerData(s, logger),
			Translator:    tr,
			PostProcessor: richtext.NewProcessor(cfg.User.FullName),
			DarkTheme:     cfg.UI.DarkTheme,
			TooltipWidth:  cfg.UI.TooltipWidth,
			Logger:        logger,
		})
	},
}

// oneShotViews reports fixed full-screen view visibility.
type oneShotViews struct {
	recent bool
	inbox  bool
}

func (v oneShotViews) RecentVisible() bool { return v.recent }
func (v oneShotViews) InboxVisible() bool  { return v.inbox }

// capturedSearch records what the header would put in the search bar.
type capturedSearch struct {
	query string
	open  bool
}

func (c *capturedSearch) Open(q string) { c.query, c.open = q, true }
func (c *capturedSearch) Close()        { c.open = false }

type headerOutput struct {
	views oneShotViews
	color bool
}

// render builds the header for narrowStr and writes it to w.
func (h headerOutput) render(w io.Writer, s *store.Store, narrowStr string, opts header.Options) error {
	search := &capturedSearch{}
	opts.View = h.views
	opts.SearchBar = search

	var f *narrow.Filter
	if narrowStr != "" {
		f = narrow.FromString(narrowStr, store.NewResolver(s, cfg.User.ID, logger))
	}
	p := header.New(header.NewTitleBar(), opts)
	p.Render(f)

	var line string
	if search.open {
		line = "/ " + search.query
	} else {
		line = p.TitleBar().View(headerWidth)
	}
	if !h.color {
		line = ansi.Strip(line)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// colorEnabled reports whether w is a terminal that should get ANSI styling.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(headerCmd)
	headerCmd.Flags().IntVarP(&headerWidth, "width", "w", 80, "output width in columns (0 for no limit)")
	headerCmd.Flags().BoolVar(&headerRecent, "recent", false, "show the recent conversations view")
	headerCmd.Flags().BoolVar(&headerInbox, "inbox", false, "show the inbox view")
}
