// Package logcolor provides domain types for rule-driven log line colorization.
package logcolor

// DefinitionKind distinguishes definitions that match text from those that
// only classify other definitions.
type DefinitionKind int

// Definition kinds.
const (
	KindConcrete DefinitionKind = iota
	KindCategory
	KindContextual
)

// String returns the kind name.
func (k DefinitionKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindContextual:
		return "contextual"
	default:
		return "concrete"
	}
}

// TokenDefinition is one compiled rule, ready to be turned into a matcher.
type TokenDefinition struct {
	Name       string
	Kind       DefinitionKind
	Pattern    string     // Fully expanded regex source; empty unless Kind is KindConcrete
	Flags      string     // Regex flags such as "i" or "s"
	Categories []string   // Direct parent categories
	SubTokens  []SubToken // Named captures in pattern order
	Priority   int        // Lower wins
}

// Matches reports whether the definition produces tokens.
func (d TokenDefinition) Matches() bool {
	return d.Kind == KindConcrete && d.Pattern != ""
}

// SubToken is a named capture group declared inside a definition's pattern.
type SubToken struct {
	Name    string
	Pattern string // Body of the capture group
}

// Token is one matched span of a line.
type Token struct {
	Type       string
	Categories []string // Category chain, nearest first
	Text       string
	Start      int // Byte offset into the line
	End        int // Byte offset one past the last byte
	SubTokens  []SubMatch
}

// InCategory reports whether the token has the given type or belongs to the
// given category.
func (t Token) InCategory(name string) bool {
	if t.Type == name {
		return true
	}
	for _, c := range t.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// SubMatch is the text captured by a named group for one token.
type SubMatch struct {
	Name  string
	Text  string
	Start int // Byte offset relative to the token start, -1 when unknown
	End   int
}

// LexError describes input the lexer skipped.
type LexError struct {
	Offset  int
	Length  int
	Message string
}

// ParseError describes a grammar expectation that a line did not meet.
type ParseError struct {
	Offset  int
	Message string
}

// LexResult is the outcome of tokenizing one line.
type LexResult struct {
	Tokens []Token
	Errors []LexError
}

// Node is one rule application in a concrete syntax tree.
type Node struct {
	Rule     string
	Children []Child
}

// Child is one ordered element of a node, holding either a token or a node.
type Child struct {
	Role  string
	Token *Token
	Node  *Node
}

// Tokens returns the leaf tokens under n in order.
func (n *Node) Tokens() []Token {
	if n == nil {
		return nil
	}
	var out []Token
	for _, c := range n.Children {
		switch {
		case c.Token != nil:
			out = append(out, *c.Token)
		case c.Node != nil:
			out = append(out, c.Node.Tokens()...)
		}
	}
	return out
}

// Child returns the first child with the given role.
func (n *Node) Child(role string) (Child, bool) {
	if n == nil {
		return Child{}, false
	}
	for _, c := range n.Children {
		if c.Role == role {
			return c, true
		}
	}
	return Child{}, false
}

// ParseResult is the outcome of parsing one line.
type ParseResult struct {
	Line        string
	Tree        *Node // nil when only tokens are available
	Tokens      []Token
	LexErrors   []LexError
	ParseErrors []ParseError
}

// HasErrors reports whether lexing or parsing produced diagnostics.
func (r ParseResult) HasErrors() bool {
	return len(r.LexErrors) > 0 || len(r.ParseErrors) > 0
}

// Lexer splits a line into tokens.
type Lexer interface {
	// Tokenize never fails: unmatched input is reported in LexResult.Errors.
	Tokenize(line string) LexResult
}

// Parser groups the tokens of a line into a concrete syntax tree.
type Parser interface {
	Parse(line string) ParseResult
}

// Renderer turns a parsed line back into text with styling applied.
type Renderer interface {
	Render(res ParseResult, theme Theme) string
}

// Theme maps style keys to style specs.
type Theme interface {
	Lookup(key string) (StyleSpec, bool)
}

// Preprocessor rewrites raw input before it is tokenized.
type Preprocessor interface {
	Process(input string) string
}
