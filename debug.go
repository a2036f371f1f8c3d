package logcolor

import "fmt"

// DebugRecord is a serializable view of how one line was tokenized and parsed.
type DebugRecord struct {
	LineNumber int          `json:"line_number"`
	Line       string       `json:"line"`
	Tokens     []DebugToken `json:"tokens"`
	Tree       *DebugNode   `json:"tree,omitempty"`
	Errors     []string     `json:"errors,omitempty"`
}

// DebugToken is the serializable form of a Token.
type DebugToken struct {
	Type       string            `json:"type"`
	Value      string            `json:"value"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Categories []string          `json:"categories,omitempty"`
	SubTokens  map[string]string `json:"sub_tokens,omitempty"`
}

// DebugNode is the serializable form of a Node.
type DebugNode struct {
	Rule     string       `json:"rule"`
	Role     string       `json:"role,omitempty"`
	Token    *DebugToken  `json:"token,omitempty"`
	Children []*DebugNode `json:"children,omitempty"`
}

// NewDebugRecord builds the debug view of a parse result.
func NewDebugRecord(lineNumber int, res ParseResult) DebugRecord {
	rec := DebugRecord{
		LineNumber: lineNumber,
		Line:       res.Line,
		Tokens:     make([]DebugToken, 0, len(res.Tokens)),
	}
	for _, tok := range res.Tokens {
		rec.Tokens = append(rec.Tokens, newDebugToken(tok))
	}
	if res.Tree != nil {
		rec.Tree = newDebugNode(res.Tree, "")
	}
	for _, e := range res.LexErrors {
		rec.Errors = append(rec.Errors, fmt.Sprintf("lex error at %d: %s", e.Offset, e.Message))
	}
	for _, e := range res.ParseErrors {
		rec.Errors = append(rec.Errors, fmt.Sprintf("parse error at %d: %s", e.Offset, e.Message))
	}
	return rec
}

func newDebugToken(tok Token) DebugToken {
	dt := DebugToken{
		Type:       tok.Type,
		Value:      tok.Text,
		Start:      tok.Start,
		End:        tok.End,
		Categories: tok.Categories,
	}
	if len(tok.SubTokens) > 0 {
		dt.SubTokens = make(map[string]string, len(tok.SubTokens))
		for _, sm := range tok.SubTokens {
			dt.SubTokens[sm.Name] = sm.Text
		}
	}
	return dt
}

func newDebugNode(n *Node, role string) *DebugNode {
	dn := &DebugNode{Rule: n.Rule, Role: role}
	for _, c := range n.Children {
		switch {
		case c.Node != nil:
			dn.Children = append(dn.Children, newDebugNode(c.Node, c.Role))
		case c.Token != nil:
			tok := newDebugToken(*c.Token)
			dn.Children = append(dn.Children, &DebugNode{Rule: c.Token.Type, Role: c.Role, Token: &tok})
		}
	}
	return dn
}
