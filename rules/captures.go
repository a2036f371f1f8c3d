package rules

import "github.com/fwojciec/logcolor"

// classState follows character-class boundaries while a regex source is
// scanned left to right. A "]" directly after "[" or "[^" is literal.
type classState struct {
	in    bool
	start int
}

// visit updates the state for src[i] and reports whether the byte belongs to
// a character class, brackets included. Escapes must be skipped by the caller.
func (c *classState) visit(src string, i int) bool {
	if c.in {
		if src[i] == ']' && i != c.start+1 && !(i == c.start+2 && src[c.start+1] == '^') {
			c.in = false
		}
		return true
	}
	if src[i] == '[' {
		c.in = true
		c.start = i
		return true
	}
	return false
}

// NamedCaptures returns the named capture groups of a regex source in order
// of appearance. Parentheses inside character classes and escaped
// parentheses are ignored. A repeated name keeps its first body.
func NamedCaptures(src string) []logcolor.SubToken {
	var out []logcolor.SubToken
	seen := make(map[string]bool)
	var class classState
	for i := 0; i < len(src); i++ {
		if src[i] == '\\' {
			i++
			continue
		}
		if class.visit(src, i) || src[i] != '(' {
			continue
		}
		name, bodyStart, ok := captureName(src, i)
		if !ok {
			continue
		}
		end := closingParen(src, i)
		if end < 0 {
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, logcolor.SubToken{Name: name, Pattern: src[bodyStart:end]})
		}
	}
	return out
}

// captureName recognizes (?<name>, (?P<name> and (?'name' at src[open].
func captureName(src string, open int) (name string, bodyStart int, ok bool) {
	rest := src[open:]
	var start int
	var closer byte
	switch {
	case len(rest) > 3 && rest[:3] == "(?<":
		start, closer = open+3, '>'
	case len(rest) > 4 && rest[:4] == "(?P<":
		start, closer = open+4, '>'
	case len(rest) > 3 && rest[:3] == "(?'":
		start, closer = open+3, '\''
	default:
		return "", 0, false
	}
	// Lookbehind (?<= and (?<! fall out here.
	if !isIdentStart(src[start]) {
		return "", 0, false
	}
	j := start + 1
	for j < len(src) && isIdentPart(src[j]) {
		j++
	}
	if j >= len(src) || src[j] != closer {
		return "", 0, false
	}
	return src[start:j], j + 1, true
}

// closingParen returns the index of the ")" matching the "(" at src[open],
// or -1 when the group is unterminated.
func closingParen(src string, open int) int {
	depth := 0
	var class classState
	for i := open; i < len(src); i++ {
		if src[i] == '\\' {
			i++
			continue
		}
		if class.visit(src, i) {
			continue
		}
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
