// Package regexp2 builds line tokenizers from token definitions using the
// regexp2 engine, which supports lookaround and named groups.
package regexp2

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	regexp2lib "github.com/dlclark/regexp2"
	"github.com/fwojciec/logcolor"
	"github.com/rs/zerolog"
)

// Compile-time interface verification.
var _ logcolor.Lexer = (*Catalog)(nil)

// Names of the fallback kinds added when a rule set does not define them.
const (
	WhitespaceType = "Whitespace"
	TextType       = "Text"
)

const (
	whitespacePattern = `[ \t]+`
	textPattern       = `[^\s]+`
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithMatchTimeout bounds the time spent in a single match attempt.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for build and timeout diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// Kind describes one token kind known to the catalog.
type Kind struct {
	Name       string
	Definition logcolor.DefinitionKind
	Categories []string // Nearest first
	SubTokens  []string
}

type matcher struct {
	kind *Kind
	re   *regexp2lib.Regexp
}

// Catalog is an immutable ordered set of matchers. It is safe for concurrent
// use once built.
type Catalog struct {
	matchers []matcher
	kinds    map[string]*Kind
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewCatalog compiles definitions into a catalog. Definitions are matched in
// priority order; a whitespace matcher is placed first and a catch-all text
// matcher last unless the definitions already provide them.
func NewCatalog(defs []logcolor.TokenDefinition, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		kinds:  make(map[string]*Kind, len(defs)+2),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	ordered := slices.Clone(defs)
	slices.SortStableFunc(ordered, func(a, b logcolor.TokenDefinition) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	parents := make(map[string][]string, len(ordered))
	for _, d := range ordered {
		if d.Name == "" {
			return nil, errors.New("regexp2: definition name cannot be empty")
		}
		if _, ok := c.kinds[d.Name]; ok {
			return nil, &logcolor.DuplicateTokenError{Name: d.Name}
		}
		parents[d.Name] = d.Categories
		k := &Kind{Name: d.Name, Definition: d.Kind}
		for _, st := range d.SubTokens {
			k.SubTokens = append(k.SubTokens, st.Name)
		}
		c.kinds[d.Name] = k
	}
	for _, k := range c.kinds {
		k.Categories = categoryChain(k.Name, parents)
	}

	hasWhitespace, hasText := false, false
	for _, d := range ordered {
		switch strings.ToLower(d.Name) {
		case "whitespace", "ws":
			hasWhitespace = true
		case "text":
			hasText = true
		}
	}
	if !hasWhitespace {
		if err := c.add(logcolor.TokenDefinition{Name: WhitespaceType, Pattern: whitespacePattern}); err != nil {
			return nil, err
		}
	}
	for _, d := range ordered {
		if !d.Matches() {
			continue
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	if !hasText {
		if err := c.add(logcolor.TokenDefinition{Name: TextType, Pattern: textPattern}); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Int("matchers", len(c.matchers)).Int("kinds", len(c.kinds)).Msg("token catalog built")
	return c, nil
}

func (c *Catalog) add(d logcolor.TokenDefinition) error {
	re, err := regexp2lib.Compile(`\G(?:`+d.Pattern+`)`, options(d.Flags))
	if err != nil {
		return &logcolor.InvalidPatternError{Name: d.Name, Pattern: d.Pattern, Err: err}
	}
	if c.timeout > 0 {
		re.MatchTimeout = c.timeout
	}
	k, ok := c.kinds[d.Name]
	if !ok {
		k = &Kind{Name: d.Name, Definition: logcolor.KindConcrete}
		c.kinds[d.Name] = k
	}
	c.matchers = append(c.matchers, matcher{kind: k, re: re})
	return nil
}

// Names returns the names of matching kinds in priority order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.matchers))
	for i, m := range c.matchers {
		out[i] = m.kind.Name
	}
	return out
}

// Kind returns the kind with the given name, including category and
// contextual kinds.
func (c *Catalog) Kind(name string) (Kind, bool) {
	k, ok := c.kinds[name]
	if !ok {
		return Kind{}, false
	}
	return *k, true
}

// Tokenize splits line into tokens. At each position the first matcher in
// priority order that matches wins. Input no matcher accepts is skipped and
// reported as a LexError.
func (c *Catalog) Tokenize(line string) logcolor.LexResult {
	var res logcolor.LexResult
	if line == "" {
		return res
	}
	runes := []rune(line)
	offsets := byteOffsets(line, len(runes))

	errStart := -1
	flush := func(end int) {
		if errStart < 0 {
			return
		}
		res.Errors = append(res.Errors, logcolor.LexError{
			Offset:  offsets[errStart],
			Length:  offsets[end] - offsets[errStart],
			Message: fmt.Sprintf("unexpected character %q", runes[errStart]),
		})
		errStart = -1
	}

	for pos := 0; pos < len(runes); {
		tok, next, ok := c.matchAt(line, runes, offsets, pos, &res)
		if !ok {
			if errStart < 0 {
				errStart = pos
			}
			pos++
			continue
		}
		flush(pos)
		res.Tokens = append(res.Tokens, tok)
		pos = next
	}
	flush(len(runes))
	return res
}

func (c *Catalog) matchAt(line string, runes []rune, offsets []int, pos int, res *logcolor.LexResult) (logcolor.Token, int, bool) {
	for _, m := range c.matchers {
		match, err := m.re.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			c.logger.Warn().Err(err).Str("token", m.kind.Name).Int("offset", offsets[pos]).Msg("match aborted")
			res.Errors = append(res.Errors, logcolor.LexError{
				Offset:  offsets[pos],
				Message: fmt.Sprintf("%s: %v", m.kind.Name, err),
			})
			continue
		}
		if match == nil || match.Index != pos || match.Length == 0 {
			continue
		}
		end := pos + match.Length
		tok := logcolor.Token{
			Type:       m.kind.Name,
			Categories: m.kind.Categories,
			Text:       line[offsets[pos]:offsets[end]],
			Start:      offsets[pos],
			End:        offsets[end],
		}
		for _, name := range m.kind.SubTokens {
			g := match.GroupByName(name)
			if g == nil || len(g.Captures) == 0 {
				continue
			}
			capture := g.Captures[0]
			if capture.Length == 0 {
				continue
			}
			start, stop := offsets[capture.Index], offsets[capture.Index+capture.Length]
			tok.SubTokens = append(tok.SubTokens, logcolor.SubMatch{
				Name:  name,
				Text:  line[start:stop],
				Start: start - tok.Start,
				End:   stop - tok.Start,
			})
		}
		return tok, end, true
	}
	return logcolor.Token{}, pos, false
}

// byteOffsets maps rune indexes to byte offsets, with one extra entry for
// the end of the line.
func byteOffsets(s string, n int) []int {
	out := make([]int, 0, n+1)
	for i := range s {
		out = append(out, i)
	}
	return append(out, len(s))
}

// categoryChain lists the transitive categories of name, nearest first.
func categoryChain(name string, parents map[string][]string) []string {
	var chain []string
	seen := map[string]bool{name: true}
	queue := append([]string(nil), parents[name]...)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		chain = append(chain, p)
		queue = append(queue, parents[p]...)
	}
	return chain
}

func options(flags string) regexp2lib.RegexOptions {
	var opts regexp2lib.RegexOptions = regexp2lib.RE2
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2lib.IgnoreCase
		case 'm':
			opts |= regexp2lib.Multiline
		case 's':
			opts |= regexp2lib.Singleline
		case 'x':
			opts |= regexp2lib.IgnorePatternWhitespace
		}
	}
	return opts
}
