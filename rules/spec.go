// Package rules compiles declarative token rule trees into ordered token
// definitions.
package rules

// Kind identifies the shape of a rule node.
type Kind int

// Rule node kinds.
const (
	KindPattern      Kind = iota // One regex
	KindAlternatives             // Regexes joined with OR
	KindCategory                 // Named children, no pattern of its own
	KindContextual               // No pattern; declares a name for sub-token styling
)

// Pattern is one regex source with its flags.
type Pattern struct {
	Source string
	Flags  string
}

// Node is a rule tree node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind     Kind
	Patterns []Pattern // KindPattern holds exactly one
	Children Spec      // KindCategory only
}

// Entry is a named node.
type Entry struct {
	Name string
	Node Node
}

// Spec is an ordered rule tree. Order is significant: earlier entries win
// when two patterns match at the same position.
type Spec []Entry

// PatternNode returns a single-pattern node.
func PatternNode(source string) Node {
	return PatternFlags(source, "")
}

// PatternFlags returns a single-pattern node with regex flags.
func PatternFlags(source, flags string) Node {
	return Node{Kind: KindPattern, Patterns: []Pattern{{Source: source, Flags: flags}}}
}

// AnyOf returns a node matching any of the given patterns.
func AnyOf(patterns ...Pattern) Node {
	return Node{Kind: KindAlternatives, Patterns: patterns}
}

// Category returns a node grouping the given entries.
func Category(children ...Entry) Node {
	return Node{Kind: KindCategory, Children: children}
}

// Contextual returns a pattern-less node.
func Contextual() Node {
	return Node{Kind: KindContextual}
}

// Token pairs a name with a node.
func Token(name string, n Node) Entry {
	return Entry{Name: name, Node: n}
}

// Lookup returns the top-level entry with the given name.
func (s Spec) Lookup(name string) (Entry, bool) {
	for _, e := range s {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Merge returns base with overlay applied: entries with an existing name are
// replaced in place, new names are appended in overlay order.
func Merge(base, overlay Spec) Spec {
	out := make(Spec, len(base), len(base)+len(overlay))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, e := range out {
		index[e.Name] = i
	}
	for _, e := range overlay {
		if i, ok := index[e.Name]; ok {
			out[i] = e
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}
