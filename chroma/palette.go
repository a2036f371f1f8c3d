// Package chroma derives log palettes from Chroma syntax highlighting styles.
package chroma

import (
	"maps"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fwojciec/logcolor"
)

// DefaultStyles are the Chroma styles offered as additional palettes.
var DefaultStyles = []string{
	"dracula",
	"nord",
	"github",
	"github-dark",
	"solarized-dark",
	"tokyonight-night",
}

// keyTokens maps palette keys to the Chroma token types whose colour they
// take, most preferred first.
var keyTokens = []struct {
	key    string
	tokens []chromalib.TokenType
}{
	{"timestamp", []chromalib.TokenType{chromalib.LiteralDate, chromalib.NameTag, chromalib.Keyword}},
	{"timestampSecondary", []chromalib.TokenType{chromalib.NameAttribute, chromalib.NameClass}},
	{"relativeTime", []chromalib.TokenType{chromalib.Comment}},
	{"logLevel.error", []chromalib.TokenType{chromalib.GenericDeleted, chromalib.GenericError}},
	{"logLevel.info", []chromalib.TokenType{chromalib.GenericInserted}},
	{"string", []chromalib.TokenType{chromalib.LiteralString}},
	{"quotedString", []chromalib.TokenType{chromalib.LiteralString}},
	{"stringError", []chromalib.TokenType{chromalib.GenericDeleted, chromalib.GenericError}},
	{"escapeSequence", []chromalib.TokenType{chromalib.LiteralStringEscape}},
	{"number", []chromalib.TokenType{chromalib.LiteralNumber}},
	{"boolean", []chromalib.TokenType{chromalib.KeywordConstant, chromalib.LiteralNumber}},
	{"null", []chromalib.TokenType{chromalib.KeywordConstant}},
	{"undefined", []chromalib.TokenType{chromalib.KeywordConstant}},
	{"nan", []chromalib.TokenType{chromalib.KeywordConstant}},
	{"infinity", []chromalib.TokenType{chromalib.KeywordConstant}},
	{"keyword", []chromalib.TokenType{chromalib.Keyword}},
	{"identifier", []chromalib.TokenType{chromalib.NameVariable, chromalib.Name}},
	{"symbol", []chromalib.TokenType{chromalib.Punctuation, chromalib.Operator}},
	{"ellipsis", []chromalib.TokenType{chromalib.Comment}},
	{"objectArrayPattern", []chromalib.TokenType{chromalib.Comment}},
	{"url", []chromalib.TokenType{chromalib.NameFunction}},
	{"ipAddress", []chromalib.TokenType{chromalib.LiteralNumberHex, chromalib.LiteralNumber}},
	{"httpMethod", []chromalib.TokenType{chromalib.NameBuiltin, chromalib.Keyword}},
	{"httpStatus2xx", []chromalib.TokenType{chromalib.GenericInserted}},
	{"httpStatus5xx", []chromalib.TokenType{chromalib.GenericDeleted, chromalib.GenericError}},
	{"filename", []chromalib.TokenType{chromalib.NameNamespace, chromalib.NameClass}},
	{"lineNumber", []chromalib.TokenType{chromalib.LiteralNumberInteger, chromalib.LiteralNumber}},
	{"columnNumber", []chromalib.TokenType{chromalib.Comment}},
	{"keyValueKey", []chromalib.TokenType{chromalib.NameAttribute, chromalib.NameTag}},
	{"keyValueEquals", []chromalib.TokenType{chromalib.Operator, chromalib.Punctuation}},
}

// Palette derives a palette named after a Chroma style. Keys the style gives
// a distinct colour are overlaid on a copy of base; the rest keep base's
// value.
func Palette(name string, base logcolor.Palette) (logcolor.Palette, bool) {
	style, ok := styles.Registry[name]
	if !ok {
		return logcolor.Palette{}, false
	}
	text := style.Get(chromalib.Text).Colour

	out := logcolor.Palette{
		Name:        name,
		Description: "Derived from the Chroma " + name + " style",
		Styles:      maps.Clone(base.Styles),
	}
	if out.Styles == nil {
		out.Styles = make(map[string]logcolor.StyleSpec)
	}
	for _, kt := range keyTokens {
		for _, tt := range kt.tokens {
			entry := style.Get(tt)
			if !entry.Colour.IsSet() || entry.Colour == text {
				continue
			}
			out.Styles[kt.key] = logcolor.Shorthand(shorthand(entry))
			break
		}
	}
	return out, true
}

// Palettes derives a palette for each known style in names.
func Palettes(base logcolor.Palette, names ...string) []logcolor.Palette {
	var out []logcolor.Palette
	for _, name := range names {
		if p, ok := Palette(name, base); ok {
			out = append(out, p)
		}
	}
	return out
}

func shorthand(e chromalib.StyleEntry) string {
	parts := []string{e.Colour.String()}
	if e.Bold == chromalib.Yes {
		parts = append(parts, "bold")
	}
	if e.Italic == chromalib.Yes {
		parts = append(parts, "italic")
	}
	if e.Underline == chromalib.Yes {
		parts = append(parts, "underline")
	}
	return strings.Join(parts, "|")
}
