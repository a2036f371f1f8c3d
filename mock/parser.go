// Package mock provides test doubles for logcolor interfaces.
package mock

import "github.com/fwojciec/logcolor"

// Compile-time interface verification.
var (
	_ logcolor.Lexer  = (*Lexer)(nil)
	_ logcolor.Parser = (*Parser)(nil)
)

// Lexer is a mock implementation of logcolor.Lexer.
type Lexer struct {
	TokenizeFn func(line string) logcolor.LexResult
}

func (l *Lexer) Tokenize(line string) logcolor.LexResult {
	return l.TokenizeFn(line)
}

// Parser is a mock implementation of logcolor.Parser.
type Parser struct {
	ParseFn func(line string) logcolor.ParseResult
}

func (p *Parser) Parse(line string) logcolor.ParseResult {
	return p.ParseFn(line)
}
