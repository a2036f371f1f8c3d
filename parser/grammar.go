package parser

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/rules"
)

// Compile-time interface verification.
var _ logcolor.Parser = (*Grammar)(nil)

// Rule names produced by Grammar.
const (
	RuleLogLine        = "logLine"
	RuleTimestamp      = "timestamp"
	RuleLogLevel       = "logLevel"
	RuleSourceInfo     = "sourceInfo"
	RuleSourceInfoGrep = "sourceInfoGrep"
	RuleObjectArray    = "objectArrayPattern"
	RuleHTTPLogEntry   = "httpLogEntry"
	RuleHTTPRequest    = "httpRequest"
	RuleKeyValuePair   = "keyValuePair"
	RuleComplexValue   = "complexValue"
	RuleSimpleValue    = "simpleValue"
	RuleQuotedString   = "quotedString"
	RuleIPAddress      = "ipAddress"
	RuleURL            = "url"
	RuleNumber         = "number"
	RuleBoolean        = "boolean"
	RuleNull           = "null"
	RuleUndefined      = "undefined"
	RuleNaN            = "nan"
	RuleInfinity       = "infinity"
	RuleIdentifier     = "identifier"
	RuleText           = "text"
	RuleSymbol         = "symbol"
	RuleEllipsis       = "ellipsis"
	RuleWhitespace     = "whitespace"
	RuleToken          = "token"
)

// Child roles produced by Grammar. Single-token rules use RoleToken.
const (
	RoleElement    = "element"
	RoleRequest    = "request"
	RoleStatus     = "status"
	RoleKey        = "key"
	RoleSeparator  = "separator"
	RoleWhitespace = "whitespace"
	RoleValue      = "value"
	RolePart       = "part"
)

// LogRulesWith returns LogRules merged with user rules. A user entry with a
// built-in name replaces it in place; new entries are placed ahead of every
// built-in, whitespace included, so patterns may start with a space.
func LogRulesWith(user rules.Spec) rules.Spec {
	base := LogRules()
	merged := rules.Merge(base, user)
	out := make(rules.Spec, 0, len(merged))
	out = append(out, merged[len(base):]...)
	return append(out, merged[:len(base)]...)
}

// Grammar recognizes the structure of common log lines on top of the tokens
// produced from LogRules. Token types it does not know are kept as generic
// token nodes.
type Grammar struct {
	lexer logcolor.Lexer
}

// NewGrammar returns a Grammar parser reading tokens from lexer.
func NewGrammar(lexer logcolor.Lexer) *Grammar {
	return &Grammar{lexer: lexer}
}

// Parse tokenizes line and groups the tokens into a logLine tree. It never
// fails; unmet expectations are reported in ParseErrors.
func (p *Grammar) Parse(line string) logcolor.ParseResult {
	lexed := p.lexer.Tokenize(line)
	s := &state{tokens: lexed.Tokens}
	root := &logcolor.Node{Rule: RuleLogLine}
	for s.pos < len(s.tokens) {
		root.Children = append(root.Children, logcolor.Child{Role: RoleElement, Node: s.element()})
	}
	return logcolor.ParseResult{
		Line:        line,
		Tree:        root,
		Tokens:      lexed.Tokens,
		LexErrors:   lexed.Errors,
		ParseErrors: s.errs,
	}
}

type state struct {
	tokens []logcolor.Token
	pos    int
	errs   []logcolor.ParseError
}

func (s *state) peek(n int) *logcolor.Token {
	if i := s.pos + n; i < len(s.tokens) {
		return &s.tokens[i]
	}
	return nil
}

func (s *state) next() *logcolor.Token {
	t := &s.tokens[s.pos]
	s.pos++
	return t
}

// offset is the byte offset of the current position.
func (s *state) offset() int {
	switch {
	case s.pos < len(s.tokens):
		return s.tokens[s.pos].Start
	case s.pos > 0:
		return s.tokens[s.pos-1].End
	default:
		return 0
	}
}

func (s *state) element() *logcolor.Node {
	if n := s.httpLogEntry(); n != nil {
		return n
	}
	if isKey(s.peek(0)) && isSeparator(s.peek(1)) {
		return s.keyValuePair()
	}
	t := s.peek(0)
	return single(ruleFor(t), s.next())
}

func (s *state) httpLogEntry() *logcolor.Node {
	first, ws, status := s.peek(0), s.peek(1), s.peek(2)
	if first == nil || ruleFor(first) != RuleHTTPRequest || !is(ws, TypeWhitespace) || !isStatus(status) {
		return nil
	}
	n := &logcolor.Node{Rule: RuleHTTPLogEntry}
	n.Children = append(n.Children, logcolor.Child{Role: RoleRequest, Node: single(RuleHTTPRequest, s.next())})
	n.Children = append(n.Children, logcolor.Child{Role: RoleWhitespace, Token: s.next()})
	n.Children = append(n.Children, logcolor.Child{Role: RoleStatus, Token: s.next()})
	return n
}

// keyValuePair consumes key and separator unconditionally; the caller has
// checked both.
func (s *state) keyValuePair() *logcolor.Node {
	n := &logcolor.Node{Rule: RuleKeyValuePair}
	n.Children = append(n.Children, logcolor.Child{Role: RoleKey, Token: s.next()})
	sep := s.next()
	n.Children = append(n.Children, logcolor.Child{Role: RoleSeparator, Token: sep})
	if is(s.peek(0), TypeWhitespace) {
		n.Children = append(n.Children, logcolor.Child{Role: RoleWhitespace, Token: s.next()})
	}
	v := s.value()
	if v == nil {
		s.errs = append(s.errs, logcolor.ParseError{
			Offset:  s.offset(),
			Message: fmt.Sprintf("expected value after %q", sep.Text),
		})
		return n
	}
	n.Children = append(n.Children, logcolor.Child{Role: RoleValue, Node: v})
	return n
}

func (s *state) value() *logcolor.Node {
	t := s.peek(0)
	if t == nil {
		return nil
	}
	switch rule := ruleFor(t); rule {
	case RuleQuotedString, RuleNumber, RuleBoolean, RuleNull, RuleUndefined, RuleNaN, RuleInfinity,
		RuleTimestamp, RuleIPAddress, RuleURL:
		return single(rule, s.next())
	case RuleWhitespace, RuleSymbol:
		return nil
	}
	if is(t, TypeIdentifier) && is(s.peek(1), TypeColon) && isPart(s.peek(2)) {
		return s.complexValue()
	}
	return single(RuleSimpleValue, s.next())
}

// complexValue consumes identifier followed by one or more ":part" pairs.
func (s *state) complexValue() *logcolor.Node {
	n := &logcolor.Node{Rule: RuleComplexValue}
	n.Children = append(n.Children, logcolor.Child{Role: RolePart, Token: s.next()})
	for is(s.peek(0), TypeColon) && isPart(s.peek(1)) {
		n.Children = append(n.Children, logcolor.Child{Role: RolePart, Token: s.next()})
		n.Children = append(n.Children, logcolor.Child{Role: RolePart, Token: s.next()})
	}
	return n
}

func single(rule string, t *logcolor.Token) *logcolor.Node {
	return &logcolor.Node{Rule: rule, Children: []logcolor.Child{{Role: RoleToken, Token: t}}}
}

// ruleFor maps a token to the single-token rule that accepts it.
func ruleFor(t *logcolor.Token) string {
	switch {
	case t.InCategory(CategoryTimestamp):
		return RuleTimestamp
	case t.InCategory(CategoryQuotedString):
		return RuleQuotedString
	case t.InCategory(CategoryIPAddress):
		return RuleIPAddress
	case t.InCategory(CategorySymbol):
		return RuleSymbol
	}
	switch t.Type {
	case TypeLogLevel, TypeSourceInfo, TypeSourceInfoGrep, TypeObjectArray, TypeURL,
		TypeNumber, TypeBoolean, TypeNull, TypeUndefined, TypeNaN, TypeInfinity,
		TypeIdentifier, TypeText, TypeEllipsis, TypeWhitespace:
		return t.Type
	case TypeHTTPRequest, TypeHTTPMethod:
		return RuleHTTPRequest
	}
	return RuleToken
}

func is(t *logcolor.Token, typ string) bool {
	return t != nil && t.Type == typ
}

func isKey(t *logcolor.Token) bool {
	return t != nil && (t.Type == TypeIdentifier || t.Type == TypeText || t.InCategory(CategoryQuotedString))
}

func isSeparator(t *logcolor.Token) bool {
	return is(t, TypeEquals) || is(t, TypeColon)
}

func isPart(t *logcolor.Token) bool {
	return is(t, TypeIdentifier) || is(t, TypeText) || is(t, TypeNumber)
}

// isStatus reports whether t is a three digit HTTP status code.
func isStatus(t *logcolor.Token) bool {
	if !is(t, TypeNumber) || len(t.Text) != 3 {
		return false
	}
	code, err := strconv.Atoi(t.Text)
	return err == nil && code >= 100 && code <= 599
}
