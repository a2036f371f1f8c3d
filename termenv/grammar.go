package termenv

import (
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/parser"
)

// Theme keys used by the grammar rules.
const (
	KeyString            = "string"
	KeyStringError       = "stringError"
	KeyStringWarning     = "stringWarning"
	KeyStringSuccess     = "stringSuccess"
	KeyEscapeSequence    = "escapeSequence"
	KeyHTTPMethod        = "httpMethod"
	KeyHTTPPath          = "httpPath"
	KeyHTTPStatusDefault = "httpStatusDefault"
	KeyKeyValueKey       = "keyValueKey"
	KeyKeyValueEquals    = "keyValueEquals"
	KeyKeyValueValue     = "keyValueValue"
	KeyURL               = "url"
)

var escapes = regexp.MustCompile(`\\(?:[bfnrtv'"\\/]|u[0-9a-fA-F]{4}|u\{[0-9a-fA-F]+\}|x[0-9a-fA-F]{2}|[0-7]{1,3})`)

type nodeFunc func(r *render, n *logcolor.Node)

// grammarRules maps rule names to their renderers. Rules not listed render
// their tokens by type.
func grammarRules() map[string]nodeFunc {
	return map[string]nodeFunc{
		parser.RuleTimestamp:    (*render).timestampNode,
		parser.RuleLogLevel:     (*render).logLevel,
		parser.RuleHTTPRequest:  (*render).httpRequest,
		parser.RuleHTTPLogEntry: (*render).httpLogEntry,
		parser.RuleKeyValuePair: (*render).keyValuePair,
		parser.RuleQuotedString: (*render).quotedString,
	}
}

func (r *render) timestampNode(n *logcolor.Node) {
	for _, t := range n.Tokens() {
		r.timestamp(&t)
	}
}

// logLevel styles a level with "logLevel.<level>", lower-cased, with
// "warning" folded into "warn".
func (r *render) logLevel(n *logcolor.Node) {
	for _, t := range n.Tokens() {
		level := strings.ToLower(t.Text)
		if level == "warning" {
			level = "warn"
		}
		r.token(&t, "logLevel."+level)
	}
}

func (r *render) httpRequest(n *logcolor.Node) {
	for _, t := range n.Tokens() {
		if t.Type == parser.TypeHTTPMethod {
			r.token(&t, KeyHTTPMethod)
			continue
		}
		spec, _ := r.find(ownKeys(&t)...)
		r.styled(&t, spec, func(name string) []string {
			keys := []string{t.Type + "_" + name}
			switch name {
			case "method":
				return append(keys, KeyHTTPMethod)
			case "path":
				return append(keys, KeyHTTPPath, KeyURL)
			}
			return append(keys, name)
		})
	}
}

// httpLogEntry styles the status code by class, e.g. "httpStatus4xx".
func (r *render) httpLogEntry(n *logcolor.Node) {
	for _, c := range n.Children {
		if c.Role == parser.RoleStatus && c.Token != nil {
			r.token(c.Token, "httpStatus"+c.Token.Text[:1]+"xx", KeyHTTPStatusDefault)
			continue
		}
		r.child(c)
	}
}

// keyValuePair styles every value token with keyValueValue when the theme
// defines it, otherwise by the value's own rule.
func (r *render) keyValuePair(n *logcolor.Node) {
	_, uniform := r.find(KeyKeyValueValue)
	for _, c := range n.Children {
		switch {
		case c.Role == parser.RoleKey && c.Token != nil:
			r.token(c.Token, KeyKeyValueKey)
		case c.Role == parser.RoleSeparator && c.Token != nil:
			r.token(c.Token, KeyKeyValueEquals)
		case c.Role == parser.RoleValue && c.Node != nil && uniform:
			for _, t := range c.Node.Tokens() {
				r.token(&t, KeyKeyValueValue)
			}
		default:
			r.child(c)
		}
	}
}

func (r *render) quotedString(n *logcolor.Node) {
	for _, t := range n.Tokens() {
		r.quoted(&t)
	}
}

// quoted styles a quoted string by what its content reports, with escape
// sequences styled separately. A string holding only a timestamp gets a
// relative time after the closing quote.
func (r *render) quoted(t *logcolor.Token) {
	if len(t.Text) < 2 {
		r.token(t)
		return
	}
	content := t.Text[1 : len(t.Text)-1]
	spec, _ := r.find(slices.Concat(stringClass(content), ownKeys(t), []string{KeyString})...)
	prefix := r.prefix(spec, t.Text, t.Type)
	escPrefix := prefix
	if esc, ok := r.find(KeyEscapeSequence); ok {
		escPrefix = r.prefix(esc, t.Text, KeyEscapeSequence)
	}

	body := t.Start + 1
	at := t.Start
	for _, loc := range escapes.FindAllStringIndex(content, -1) {
		r.w.span(at, body+loc[0], prefix)
		r.w.span(body+loc[0], body+loc[1], escPrefix)
		at = body + loc[1]
	}
	r.w.span(at, t.End, prefix)

	if r.c.relative {
		if ts, ok := logcolor.ParseTimestamp(content, r.c.loc); ok {
			r.relativeTime(ts)
		}
	}
}

// stringClass returns the keys suggested by words in a string's content.
func stringClass(content string) []string {
	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, "error", "fail", "exception"):
		return []string{KeyStringError}
	case containsAny(lower, "warn"):
		return []string{KeyStringWarning, "logLevel.warn"}
	case containsAny(lower, "success", "complete", "ok"):
		return []string{KeyStringSuccess, "httpStatus2xx"}
	}
	return nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
