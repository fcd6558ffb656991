// Package richtext renders stream descriptions for the terminal and
// post-processes the embedded mentions, emoji and timestamps.
package richtext

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	})
	return markdownParser
}

// Spans are written as markers that survive rendering untouched and are
// resolved by Processor.Update at display time, so relative times stay
// current. During parsing each span is held as a numbered placeholder that
// no inline parser can split.
var (
	mentionSrcRe  = regexp.MustCompile(`@(_?)\*\*([^*\n]+)\*\*`)
	timeSrcRe     = regexp.MustCompile(`<time:([^>\s]+)>`)
	placeholderRe = regexp.MustCompile(`⟦(\d+)⟧`)
	markerRe      = regexp.MustCompile(`⟦(mention|silent|time):([^⟧]*)⟧`)
)

// extractSpans swaps mention and time spans in src for placeholders and
// returns the markers they stand for.
func extractSpans(src string) (string, []string) {
	var spans []string
	hold := func(marker string) string {
		spans = append(spans, marker)
		return "⟦" + strconv.Itoa(len(spans)-1) + "⟧"
	}
	src = mentionSrcRe.ReplaceAllStringFunc(src, func(m string) string {
		sub := mentionSrcRe.FindStringSubmatch(m)
		kind := "mention"
		if sub[1] == "_" {
			kind = "silent"
		}
		return hold("⟦" + kind + ":" + sub[2] + "⟧")
	})
	src = timeSrcRe.ReplaceAllStringFunc(src, func(m string) string {
		return hold("⟦time:" + timeSrcRe.FindStringSubmatch(m)[1] + "⟧")
	})
	return src, spans
}

// RenderMarkdown renders src as styled terminal text wrapped to width.
// Paragraphs are separated by a blank line; width <= 0 disables wrapping.
func RenderMarkdown(src string, width int) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	prepared, spans := extractSpans(src)
	source := []byte(prepared)
	doc := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Rendered descriptions are stored, so the colour profile is fixed
	// rather than detected from whatever terminal ran the command.
	lr := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lr.SetColorProfile(termenv.ANSI256)

	r := &markdownRenderer{source: source, width: width, lip: lr}
	_ = ast.Walk(doc, r.walk)
	r.flush()
	out := strings.Join(r.blocks, "\n\n")
	return placeholderRe.ReplaceAllStringFunc(out, func(m string) string {
		i, err := strconv.Atoi(m[len("⟦") : len(m)-len("⟧")])
		if err != nil || i >= len(spans) {
			return m
		}
		return spans[i]
	})
}

type markdownRenderer struct {
	source []byte
	width  int
	lip    *lipgloss.Renderer

	blocks []string
	inline strings.Builder

	boldCount   int
	italicCount int
	strikeCount int
	linkDepth   int

	// Items of one list share a block, one per line.
	listDepth int
	listOpen  bool
}

func (r *markdownRenderer) flush() {
	content := strings.TrimRight(r.inline.String(), " ")
	r.inline.Reset()
	if content == "" {
		return
	}
	if r.width > 0 {
		content = ansi.Wrap(content, r.width, " ,.;-")
	}
	if r.listDepth > 0 && r.listOpen && len(r.blocks) > 0 {
		r.blocks[len(r.blocks)-1] += "\n" + content
		return
	}
	r.blocks = append(r.blocks, content)
	r.listOpen = r.listDepth > 0
}

func (r *markdownRenderer) style() lipgloss.Style {
	s := r.lip.NewStyle()
	if r.boldCount > 0 {
		s = s.Bold(true)
	}
	if r.italicCount > 0 {
		s = s.Italic(true)
	}
	if r.strikeCount > 0 {
		s = s.Strikethrough(true)
	}
	if r.linkDepth > 0 {
		s = s.Underline(true).Foreground(linkColor)
	}
	return s
}

// styledText styles s but leaves placeholders bare so the processor can
// replace them without nesting escape sequences.
func (r *markdownRenderer) styledText(s string) string {
	st := r.style()
	var b strings.Builder
	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			b.WriteString(st.Render(s[last:loc[0]]))
		}
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		b.WriteString(st.Render(s[last:]))
	}
	return b.String()
}

func (r *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if !entering {
			r.flush()
		}
	case *ast.Heading:
		if entering {
			r.boldCount++
		} else {
			r.boldCount--
			r.flush()
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.flush()
			lines := n.Lines()
			var code []string
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				code = append(code, strings.TrimRight(string(seg.Value(r.source)), "\n"))
			}
			r.blocks = append(r.blocks, r.lip.NewStyle().Foreground(codeColor).Render(strings.Join(code, "\n")))
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		r.flush()
		if entering {
			r.listDepth++
		} else {
			r.listDepth--
		}
		r.listOpen = false
	case *ast.ListItem:
		if entering {
			r.flush()
			r.inline.WriteString("- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.flush()
			r.blocks = append(r.blocks, "───")
		}
	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	case *ast.Text:
		if entering {
			r.inline.WriteString(r.styledText(string(n.Segment.Value(r.source))))
			if n.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
			if n.HardLineBreak() {
				r.inline.WriteString("\n")
			}
		}
	case *ast.String:
		if entering {
			r.inline.WriteString(r.styledText(string(n.Value)))
		}
	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if n.Level >= 2 {
			r.boldCount += delta
		} else {
			r.italicCount += delta
		}
	case *extast.Strikethrough:
		if entering {
			r.strikeCount++
		} else {
			r.strikeCount--
		}
	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					code.Write(t.Segment.Value(r.source))
				}
			}
			r.inline.WriteString(r.lip.NewStyle().Foreground(codeColor).Render(code.String()))
		}
		return ast.WalkSkipChildren, nil
	case *ast.Link:
		if entering {
			r.linkDepth++
		} else {
			r.linkDepth--
		}
	case *ast.AutoLink:
		if entering {
			r.linkDepth++
			r.inline.WriteString(r.style().Render(string(n.URL(r.source))))
			r.linkDepth--
		}
		return ast.WalkSkipChildren, nil
	case *ast.Image:
		if entering {
			r.inline.WriteString(r.lip.NewStyle().Foreground(codeColor).Render("[image]"))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}
