// Package lipgloss prints human-readable debug views of parsed lines using
// the Lipgloss styling library.
package lipgloss

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	lipglosslib "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fwojciec/logcolor"
	"github.com/muesli/termenv"
)

// Catppuccin Mocha colors.
const (
	blue   = "#89b4fa"
	yellow = "#f9e2af"
	red    = "#f38ba8"
	muted  = "#6c7086"
)

// Option configures a DebugWriter.
type Option func(*DebugWriter)

// WithProfile sets the color profile instead of detecting it from the
// output.
func WithProfile(p termenv.Profile) Option {
	return func(d *DebugWriter) {
		d.renderer.SetColorProfile(p)
	}
}

// DebugWriter prints each debug record as a token table followed by the
// syntax tree and any diagnostics. It is safe for concurrent use.
type DebugWriter struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipglosslib.Renderer
	header   lipglosslib.Style
	border   lipglosslib.Style
	cell     lipglosslib.Style
	errStyle lipglosslib.Style
}

// NewDebugWriter returns a DebugWriter printing to w.
func NewDebugWriter(w io.Writer, opts ...Option) *DebugWriter {
	d := &DebugWriter{w: w, renderer: lipglosslib.NewRenderer(w)}
	for _, opt := range opts {
		opt(d)
	}
	r := d.renderer
	d.header = r.NewStyle().Bold(true).Foreground(lipglosslib.Color(blue)).Padding(0, 1)
	d.border = r.NewStyle().Foreground(lipglosslib.Color(muted))
	d.cell = r.NewStyle().Padding(0, 1)
	d.errStyle = r.NewStyle().Foreground(lipglosslib.Color(red))
	return d
}

// Write prints rec.
func (d *DebugWriter) Write(rec logcolor.DebugRecord) error {
	var b strings.Builder
	title := d.renderer.NewStyle().Bold(true).Foreground(lipglosslib.Color(yellow))
	fmt.Fprintf(&b, "%s %s\n", title.Render(fmt.Sprintf("line %d:", rec.LineNumber)), rec.Line)
	if len(rec.Tokens) > 0 {
		b.WriteString(d.tokens(rec.Tokens))
		b.WriteByte('\n')
	}
	if rec.Tree != nil {
		b.WriteString(d.node(rec.Tree).String())
		b.WriteByte('\n')
	}
	for _, e := range rec.Errors {
		b.WriteString(d.errStyle.Render(e))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := io.WriteString(d.w, b.String()); err != nil {
		return fmt.Errorf("write debug view for line %d: %w", rec.LineNumber, err)
	}
	return nil
}

func (d *DebugWriter) tokens(tokens []logcolor.DebugToken) string {
	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, []string{
			t.Type,
			strconv.Quote(t.Value),
			fmt.Sprintf("%d-%d", t.Start, t.End),
			strings.Join(t.Categories, ", "),
			subTokens(t.SubTokens),
		})
	}
	return table.New().
		Border(lipglosslib.NormalBorder()).
		BorderStyle(d.border).
		StyleFunc(func(row, _ int) lipglosslib.Style {
			if row == table.HeaderRow {
				return d.header
			}
			return d.cell
		}).
		Headers("TYPE", "VALUE", "RANGE", "CATEGORIES", "SUB-TOKENS").
		Rows(rows...).
		String()
}

func (d *DebugWriter) node(n *logcolor.DebugNode) *tree.Tree {
	t := tree.Root(label(n)).EnumeratorStyle(d.border)
	for _, c := range n.Children {
		if c.Token != nil {
			t.Child(label(c))
			continue
		}
		t.Child(d.node(c))
	}
	return t
}

func label(n *logcolor.DebugNode) string {
	s := n.Rule
	if n.Token != nil {
		s += " " + strconv.Quote(n.Token.Value)
	}
	if n.Role != "" {
		s = n.Role + ": " + s
	}
	return s
}

func subTokens(subs map[string]string) string {
	parts := make([]string, 0, len(subs))
	for _, name := range slices.Sorted(maps.Keys(subs)) {
		parts = append(parts, name+"="+strconv.Quote(subs[name]))
	}
	return strings.Join(parts, " ")
}
