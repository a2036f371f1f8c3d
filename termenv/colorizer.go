// Package termenv renders parsed log lines with ANSI SGR styling.
package termenv

import (
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/logcolor"
	termenvlib "github.com/muesli/termenv"
)

// Compile-time interface verification.
var _ logcolor.Renderer = (*Colorizer)(nil)

// Theme keys with a fixed meaning.
const (
	KeyTimestamp          = "timestamp"
	KeyTimestampSecondary = "timestampSecondary"
	KeyRelativeTime       = "relativeTime"
)

// Option configures a Colorizer.
type Option func(*Colorizer)

// WithProfile sets the color profile. Ascii disables styling; ANSI and
// ANSI256 downsample hex colors.
func WithProfile(p termenvlib.Profile) Option {
	return func(c *Colorizer) {
		c.profile = p
	}
}

// WithRelativeTime appends how long ago each parseable timestamp was.
func WithRelativeTime(enabled bool) Option {
	return func(c *Colorizer) {
		c.relative = enabled
	}
}

// WithClock sets the time source for relative time.
func WithClock(now func() time.Time) Option {
	return func(c *Colorizer) {
		c.now = now
	}
}

// WithLocation sets the zone used for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(c *Colorizer) {
		c.loc = loc
	}
}

// Colorizer renders parse results as styled text. It holds no per-line
// state and is safe for concurrent use.
type Colorizer struct {
	profile  termenvlib.Profile
	relative bool
	now      func() time.Time
	loc      *time.Location
	styler   *styler
	rules    map[string]nodeFunc
}

// NewColorizer returns a Colorizer. The default profile is TrueColor.
func NewColorizer(opts ...Option) *Colorizer {
	c := &Colorizer{
		profile: termenvlib.TrueColor,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.styler = newStyler(c.profile)
	c.rules = grammarRules()
	return c
}

// Render styles res.Line using theme. Text outside tokens is copied
// unchanged. A nil theme styles nothing.
func (c *Colorizer) Render(res logcolor.ParseResult, theme logcolor.Theme) string {
	r := &render{
		c:     c,
		theme: theme,
		w:     lineWriter{line: res.Line},
		now:   c.now(),
	}
	r.w.onNewline = func() { r.timestamps = 0 }
	if res.Tree != nil {
		r.node(res.Tree)
	} else {
		for i := range res.Tokens {
			r.token(&res.Tokens[i])
		}
	}
	return r.w.finish()
}

// render is the state of one Render call.
type render struct {
	c          *Colorizer
	theme      logcolor.Theme
	w          lineWriter
	now        time.Time
	timestamps int
}

func (r *render) node(n *logcolor.Node) {
	if fn, ok := r.c.rules[n.Rule]; ok {
		fn(r, n)
		return
	}
	r.children(n)
}

func (r *render) children(n *logcolor.Node) {
	for _, c := range n.Children {
		r.child(c)
	}
}

func (r *render) child(c logcolor.Child) {
	switch {
	case c.Node != nil:
		r.node(c.Node)
	case c.Token != nil:
		r.token(c.Token)
	}
}

// token renders t with the first style found among keys, its type and its
// categories.
func (r *render) token(t *logcolor.Token, keys ...string) {
	if t.InCategory(KeyTimestamp) {
		r.timestamp(t, keys...)
		return
	}
	spec, _ := r.find(slices.Concat(keys, ownKeys(t))...)
	r.styled(t, spec, nil)
}

// timestamp renders the first timestamp of a line in the primary style and
// later ones in the secondary style when the theme has one.
func (r *render) timestamp(t *logcolor.Token, keys ...string) {
	keys = slices.Concat(keys, ownKeys(t), []string{KeyTimestamp})
	if r.timestamps > 0 {
		keys = slices.Concat([]string{KeyTimestampSecondary}, keys)
	}
	r.timestamps++
	spec, _ := r.find(keys...)

	base, suffix := logcolor.SplitRelativeSuffix(t.Text)
	if r.c.relative {
		if ts, ok := logcolor.ParseTimestamp(base, r.c.loc); ok {
			r.w.span(t.Start, t.Start+len(base), r.prefix(spec, base, t.Type))
			r.w.skip(t.End)
			r.relativeTime(ts)
			return
		}
	}
	if suffix != "" {
		rel, _ := r.find(KeyRelativeTime)
		r.w.span(t.Start, t.Start+len(base), r.prefix(spec, base, t.Type))
		r.w.span(t.Start+len(base), t.End, r.prefix(rel, suffix, KeyRelativeTime))
		return
	}
	r.styled(t, spec, nil)
}

func (r *render) relativeTime(ts time.Time) {
	text := "(" + logcolor.FormatRelative(ts, r.now) + ")"
	spec, _ := r.find(KeyRelativeTime)
	r.w.insert(text, r.prefix(spec, text, KeyRelativeTime))
}

// styled renders t with spec. Named captures are styled on their own when
// the theme has a style for them; the rest of the token keeps spec.
// subKeys lists the keys tried for a capture; nil means "{type}_{name}"
// then "{name}".
func (r *render) styled(t *logcolor.Token, spec logcolor.StyleSpec, subKeys func(name string) []string) {
	prefix := r.prefix(spec, t.Text, t.Type)
	if len(t.SubTokens) == 0 {
		r.w.span(t.Start, t.End, prefix)
		return
	}
	if subKeys == nil {
		subKeys = func(name string) []string {
			return []string{t.Type + "_" + name, name}
		}
	}
	cursor := 0
	for _, sm := range t.SubTokens {
		if sm.Text == "" {
			continue
		}
		start := sm.Start
		if start < 0 {
			i := strings.Index(t.Text[cursor:], sm.Text)
			if i < 0 {
				continue
			}
			start = cursor + i
		}
		end := start + len(sm.Text)
		// Nested and overlapping captures stay in the enclosing span.
		if start < cursor || end > len(t.Text) {
			continue
		}
		subPrefix := prefix
		if sub, ok := r.find(subKeys(sm.Name)...); ok {
			subPrefix = r.prefix(sub, sm.Text, sm.Name)
		}
		r.w.span(t.Start+cursor, t.Start+start, prefix)
		r.w.span(t.Start+start, t.Start+end, subPrefix)
		cursor = end
	}
	r.w.span(t.Start+cursor, t.End, prefix)
}

// find returns the first non-empty style among keys.
func (r *render) find(keys ...string) (logcolor.StyleSpec, bool) {
	if r.theme == nil {
		return logcolor.StyleSpec{}, false
	}
	for _, key := range keys {
		if spec, ok := r.theme.Lookup(key); ok && !spec.Unset && !spec.IsZero() {
			return spec, true
		}
	}
	return logcolor.StyleSpec{}, false
}

// prefix resolves callbacks and returns the escape sequences for spec.
func (r *render) prefix(spec logcolor.StyleSpec, value, tokenType string) string {
	if spec.Func != nil {
		spec = spec.Func(logcolor.TokenContext{Value: value, TokenType: tokenType})
		spec.Func = nil
	}
	return r.c.styler.prefix(spec)
}

// ownKeys returns the type of t followed by its categories, nearest first.
func ownKeys(t *logcolor.Token) []string {
	return append([]string{t.Type}, t.Categories...)
}

// lineWriter copies a line to a buffer, wrapping byte ranges in escape
// sequences. Adjacent ranges with the same prefix share one sequence.
type lineWriter struct {
	line      string
	pos       int
	open      string
	b         strings.Builder
	onNewline func()
}

// span writes line[start:end] with prefix, copying any unstyled text
// before start. Ranges behind the current position are dropped.
func (w *lineWriter) span(start, end int, prefix string) {
	start = max(start, w.pos)
	if end <= start {
		return
	}
	if start > w.pos {
		w.gap(start)
	}
	w.write(w.line[start:end], prefix)
	w.pos = end
}

// insert writes text that is not part of the line.
func (w *lineWriter) insert(text, prefix string) {
	w.write(text, prefix)
}

// skip drops line text up to end.
func (w *lineWriter) skip(end int) {
	w.pos = max(w.pos, end)
}

func (w *lineWriter) gap(end int) {
	w.close()
	text := w.line[w.pos:end]
	if w.onNewline != nil && strings.Contains(text, "\n") {
		w.onNewline()
	}
	w.b.WriteString(text)
	w.pos = end
}

func (w *lineWriter) write(text, prefix string) {
	if prefix != w.open {
		w.close()
		w.b.WriteString(prefix)
		w.open = prefix
	}
	w.b.WriteString(text)
}

func (w *lineWriter) close() {
	if w.open != "" {
		w.b.WriteString(reset)
		w.open = ""
	}
}

func (w *lineWriter) finish() string {
	if w.pos < len(w.line) {
		w.gap(len(w.line))
	}
	w.close()
	return w.b.String()
}
