// Package yaml decodes rule and theme sections of a configuration file.
//
// The node API is used instead of struct decoding because the order of
// token entries defines match priority and keys are case-sensitive.
package yaml

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/rules"
	yamllib "gopkg.in/yaml.v3"
)

// Top-level keys read from a document. Other keys are ignored.
const (
	KeyTheme  = "theme"
	KeyTokens = "tokens"
	KeyStyles = "styles"
)

// Document holds the rule and theme sections of a configuration file.
type Document struct {
	Theme  string                        // Parent theme name
	Tokens rules.Spec                    // User rules in file order
	Styles map[string]logcolor.StyleSpec // Theme overrides; null values unset
}

// Load reads and decodes the file at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read config %q: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return Document{}, fmt.Errorf("decode config %q: %w", path, err)
	}
	return doc, nil
}

// Decode parses a YAML document. An empty document is valid.
//
// Token values are either a regex written as /source/flags or a bare
// source, a list of such regexes matched as alternatives, a nested mapping
// forming a category, or null for a name that only styles sub-tokens.
//
// Style values are a shorthand string, a record with color, bgColor, bold,
// italic and underline (fontWeight, fontStyle and textDecoration are also
// accepted), or null to remove the key inherited from the parent theme.
func Decode(data []byte) (Document, error) {
	var doc Document
	var root yamllib.Node
	if err := yamllib.Unmarshal(data, &root); err != nil {
		return doc, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	body := resolve(root.Content[0])
	if isNull(body) {
		return doc, nil
	}
	if body.Kind != yamllib.MappingNode {
		return doc, fmt.Errorf("line %d: document must be a mapping", body.Line)
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		key, value := body.Content[i].Value, resolve(body.Content[i+1])
		var err error
		switch key {
		case KeyTheme:
			if !isNull(value) {
				err = value.Decode(&doc.Theme)
			}
		case KeyTokens:
			doc.Tokens, err = decodeSpec(value)
		case KeyStyles:
			doc.Styles, err = decodeStyles(value)
		}
		if err != nil {
			return Document{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	return doc, nil
}

func decodeSpec(n *yamllib.Node) (rules.Spec, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yamllib.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of token names", n.Line)
	}
	spec := make(rules.Spec, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, value := n.Content[i].Value, resolve(n.Content[i+1])
		node, err := decodeNode(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		spec = append(spec, rules.Token(name, node))
	}
	return spec, nil
}

func decodeNode(n *yamllib.Node) (rules.Node, error) {
	switch {
	case isNull(n):
		return rules.Contextual(), nil
	case n.Kind == yamllib.ScalarNode:
		p := ParsePattern(n.Value)
		return rules.PatternFlags(p.Source, p.Flags), nil
	case n.Kind == yamllib.SequenceNode:
		patterns := make([]rules.Pattern, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolve(item)
			if item.Kind != yamllib.ScalarNode || isNull(item) {
				return rules.Node{}, fmt.Errorf("line %d: alternatives must be patterns", item.Line)
			}
			patterns = append(patterns, ParsePattern(item.Value))
		}
		if len(patterns) == 0 {
			return rules.Node{}, fmt.Errorf("line %d: empty alternatives", n.Line)
		}
		return rules.AnyOf(patterns...), nil
	case n.Kind == yamllib.MappingNode:
		children, err := decodeSpec(n)
		if err != nil {
			return rules.Node{}, err
		}
		return rules.Category(children...), nil
	}
	return rules.Node{}, fmt.Errorf("line %d: unsupported token value", n.Line)
}

// ParsePattern reads a regex literal such as /ab+c/i. Text without the
// slashes, or with trailing characters that are not flags, is taken as the
// pattern source. The g and u flags are accepted and dropped.
func ParsePattern(s string) rules.Pattern {
	if len(s) < 2 || s[0] != '/' {
		return rules.Pattern{Source: s}
	}
	end := strings.LastIndexByte(s, '/')
	if end == 0 {
		return rules.Pattern{Source: s}
	}
	var flags strings.Builder
	for _, f := range s[end+1:] {
		switch f {
		case 'i', 'm', 's', 'x':
			flags.WriteRune(f)
		case 'g', 'u':
		default:
			return rules.Pattern{Source: s}
		}
	}
	return rules.Pattern{Source: s[1:end], Flags: flags.String()}
}

type record struct {
	Color          string `yaml:"color"`
	BgColor        string `yaml:"bgColor"`
	Bold           bool   `yaml:"bold"`
	Italic         bool   `yaml:"italic"`
	Underline      bool   `yaml:"underline"`
	FontWeight     string `yaml:"fontWeight"`
	FontStyle      string `yaml:"fontStyle"`
	TextDecoration string `yaml:"textDecoration"`
}

func decodeStyles(n *yamllib.Node) (map[string]logcolor.StyleSpec, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yamllib.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of style keys", n.Line)
	}
	styles := make(map[string]logcolor.StyleSpec, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, resolve(n.Content[i+1])
		switch {
		case isNull(value):
			styles[key] = logcolor.Unset()
		case value.Kind == yamllib.ScalarNode:
			styles[key] = logcolor.Shorthand(value.Value)
		case value.Kind == yamllib.MappingNode:
			var r record
			if err := value.Decode(&r); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			styles[key] = logcolor.Record(logcolor.StyleRecord{
				Color:      r.Color,
				Background: r.BgColor,
				Bold:       r.Bold || r.FontWeight == "bold",
				Italic:     r.Italic || r.FontStyle == "italic",
				Underline:  r.Underline || r.TextDecoration == "underline",
			})
		default:
			return nil, fmt.Errorf("%s: line %d: %w", key, value.Line, errUnsupportedStyle)
		}
	}
	return styles, nil
}

var errUnsupportedStyle = errors.New("style must be a string, a mapping or null")

func resolve(n *yamllib.Node) *yamllib.Node {
	for n != nil && n.Kind == yamllib.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yamllib.Node) bool {
	return n == nil || (n.Kind == yamllib.ScalarNode && n.ShortTag() == "!!null")
}
