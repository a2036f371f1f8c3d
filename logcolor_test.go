package logcolor_test

import (
	"testing"

	"github.com/fwojciec/logcolor"
	"github.com/stretchr/testify/assert"
)

func TestNode(t *testing.T) {
	t.Parallel()

	key := logcolor.Token{Type: "identifier", Text: "user"}
	eq := logcolor.Token{Type: "symbol_equals", Text: "="}
	val := logcolor.Token{Type: "number", Text: "7"}
	tree := &logcolor.Node{Rule: "keyValuePair", Children: []logcolor.Child{
		{Role: "key", Token: &key},
		{Role: "separator", Token: &eq},
		{Role: "value", Node: &logcolor.Node{Rule: "simpleValue", Children: []logcolor.Child{{Role: "token", Token: &val}}}},
	}}

	t.Run("tokens in order", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []logcolor.Token{key, eq, val}, tree.Tokens())
	})

	t.Run("child by role", func(t *testing.T) {
		t.Parallel()

		c, ok := tree.Child("value")

		assert.True(t, ok)
		assert.Equal(t, "simpleValue", c.Node.Rule)
	})

	t.Run("missing role", func(t *testing.T) {
		t.Parallel()

		_, ok := tree.Child("whitespace")

		assert.False(t, ok)
	})

	t.Run("nil node", func(t *testing.T) {
		t.Parallel()

		var n *logcolor.Node

		assert.Nil(t, n.Tokens())
		_, ok := n.Child("key")
		assert.False(t, ok)
	})
}

func TestToken_InCategory(t *testing.T) {
	t.Parallel()

	tok := logcolor.Token{Type: "ipAddress_v4", Categories: []string{"ipAddress", "network"}}

	assert.True(t, tok.InCategory("ipAddress_v4"))
	assert.True(t, tok.InCategory("ipAddress"))
	assert.True(t, tok.InCategory("network"))
	assert.False(t, tok.InCategory("timestamp"))
}

func TestParseResult_HasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, logcolor.ParseResult{}.HasErrors())
	assert.True(t, logcolor.ParseResult{LexErrors: []logcolor.LexError{{}}}.HasErrors())
	assert.True(t, logcolor.ParseResult{ParseErrors: []logcolor.ParseError{{}}}.HasErrors())
}

func TestTokenDefinition_Matches(t *testing.T) {
	t.Parallel()

	assert.True(t, logcolor.TokenDefinition{Kind: logcolor.KindConcrete, Pattern: `\d+`}.Matches())
	assert.False(t, logcolor.TokenDefinition{Kind: logcolor.KindConcrete}.Matches())
	assert.False(t, logcolor.TokenDefinition{Kind: logcolor.KindCategory}.Matches())
	assert.Equal(t, "category", logcolor.KindCategory.String())
	assert.Equal(t, "contextual", logcolor.KindContextual.String())
	assert.Equal(t, "concrete", logcolor.KindConcrete.String())
}

func TestStyleSpec(t *testing.T) {
	t.Parallel()

	assert.True(t, logcolor.StyleSpec{}.IsZero())
	assert.True(t, logcolor.Unset().IsZero())
	assert.True(t, logcolor.Unset().Unset)
	assert.False(t, logcolor.Shorthand("red").IsZero())
	assert.False(t, logcolor.Record(logcolor.StyleRecord{Bold: true}).IsZero())
	assert.False(t, logcolor.Callback(func(logcolor.TokenContext) logcolor.StyleSpec { return logcolor.StyleSpec{} }).IsZero())
}
