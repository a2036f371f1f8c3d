package termenv

import (
	"fmt"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/cache"
	termenvlib "github.com/muesli/termenv"
)

// colors maps color names to ANSI palette entries. Background variants are
// spelled "bg" plus the capitalized name, e.g. "bgRed" or "bgCyanBright".
var colors = map[string]termenvlib.ANSIColor{
	"black":         termenvlib.ANSIBlack,
	"red":           termenvlib.ANSIRed,
	"green":         termenvlib.ANSIGreen,
	"yellow":        termenvlib.ANSIYellow,
	"blue":          termenvlib.ANSIBlue,
	"magenta":       termenvlib.ANSIMagenta,
	"cyan":          termenvlib.ANSICyan,
	"white":         termenvlib.ANSIWhite,
	"gray":          termenvlib.ANSIBrightBlack,
	"grey":          termenvlib.ANSIBrightBlack,
	"blackBright":   termenvlib.ANSIBrightBlack,
	"redBright":     termenvlib.ANSIBrightRed,
	"greenBright":   termenvlib.ANSIBrightGreen,
	"yellowBright":  termenvlib.ANSIBrightYellow,
	"blueBright":    termenvlib.ANSIBrightBlue,
	"magentaBright": termenvlib.ANSIBrightMagenta,
	"cyanBright":    termenvlib.ANSIBrightCyan,
	"whiteBright":   termenvlib.ANSIBrightWhite,
}

var modifiers = map[string]string{
	"bold":          termenvlib.BoldSeq,
	"dim":           termenvlib.FaintSeq,
	"italic":        termenvlib.ItalicSeq,
	"underline":     termenvlib.UnderlineSeq,
	"inverse":       termenvlib.ReverseSeq,
	"strikethrough": termenvlib.CrossOutSeq,
}

const reset = termenvlib.CSI + termenvlib.ResetSeq + "m"

// styler turns style specs into SGR prefixes for one color profile.
type styler struct {
	profile termenvlib.Profile
	memo    *cache.Memo[string]
}

func newStyler(p termenvlib.Profile) *styler {
	return &styler{
		profile: p,
		memo:    cache.New[string](cache.DefaultExpiration, cache.DefaultCleanupInterval),
	}
}

// prefix returns the escape sequences that start spec, or "" when spec
// produces no styling. Callbacks must already be resolved.
func (s *styler) prefix(spec logcolor.StyleSpec) string {
	if s.profile == termenvlib.Ascii {
		return ""
	}
	switch {
	case spec.Shorthand != "":
		return s.memo.GetOrCompute(spec.Shorthand, func() string {
			return s.shorthand(spec.Shorthand)
		})
	case spec.Record != nil:
		return s.record(*spec.Record)
	}
	return ""
}

// shorthand composes pipe-separated segments left to right. Unknown
// segments are ignored.
func (s *styler) shorthand(src string) string {
	var b strings.Builder
	for _, seg := range strings.Split(src, "|") {
		seg = strings.TrimSpace(seg)
		if code, ok := modifiers[seg]; ok {
			writeSGR(&b, code)
			continue
		}
		if name, ok := strings.CutPrefix(seg, "bg"); ok && name != "" {
			writeSGR(&b, s.color(lowerFirst(name), true))
			continue
		}
		writeSGR(&b, s.color(seg, false))
	}
	return b.String()
}

func (s *styler) record(r logcolor.StyleRecord) string {
	var b strings.Builder
	if r.Color != "" {
		writeSGR(&b, s.color(r.Color, false))
	}
	if r.Bold {
		writeSGR(&b, termenvlib.BoldSeq)
	}
	if r.Italic {
		writeSGR(&b, termenvlib.ItalicSeq)
	}
	if r.Underline {
		writeSGR(&b, termenvlib.UnderlineSeq)
	}
	if r.Background != "" {
		bg := r.Background
		if name, ok := strings.CutPrefix(bg, "bg"); ok && name != "" {
			bg = lowerFirst(name)
		}
		writeSGR(&b, s.color(bg, true))
	}
	return b.String()
}

// color returns the SGR parameters for a named or hex color, or "" when
// value is neither.
func (s *styler) color(value string, bg bool) string {
	if c, ok := colors[value]; ok {
		return s.profile.Convert(c).Sequence(bg)
	}
	if !strings.HasPrefix(value, "#") {
		return ""
	}
	c := chromalib.ParseColour(value)
	if !c.IsSet() {
		return ""
	}
	if s.profile == termenvlib.TrueColor {
		kind := termenvlib.Foreground
		if bg {
			kind = termenvlib.Background
		}
		return fmt.Sprintf("%s;2;%d;%d;%d", kind, c.Red(), c.Green(), c.Blue())
	}
	return s.profile.Convert(termenvlib.RGBColor(c.String())).Sequence(bg)
}

func writeSGR(b *strings.Builder, code string) {
	if code == "" {
		return
	}
	b.WriteString(termenvlib.CSI)
	b.WriteString(code)
	b.WriteString("m")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
