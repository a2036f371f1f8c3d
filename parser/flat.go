package parser

import "github.com/fwojciec/logcolor"

// Compile-time interface verification.
var _ logcolor.Parser = (*Flat)(nil)

// Rule names produced by Flat.
const (
	RuleLine  = "line"
	RoleToken = "token"
)

// Flat places every lexed token directly under a single line node. It works
// with any rule set.
type Flat struct {
	lexer logcolor.Lexer
}

// NewFlat returns a Flat parser reading tokens from lexer.
func NewFlat(lexer logcolor.Lexer) *Flat {
	return &Flat{lexer: lexer}
}

// Parse tokenizes line and wraps each token in a child of the root node.
func (p *Flat) Parse(line string) logcolor.ParseResult {
	lexed := p.lexer.Tokenize(line)
	root := &logcolor.Node{Rule: RuleLine, Children: make([]logcolor.Child, 0, len(lexed.Tokens))}
	for i := range lexed.Tokens {
		root.Children = append(root.Children, logcolor.Child{Role: RoleToken, Token: &lexed.Tokens[i]})
	}
	return logcolor.ParseResult{
		Line:      line,
		Tree:      root,
		Tokens:    lexed.Tokens,
		LexErrors: lexed.Errors,
	}
}
