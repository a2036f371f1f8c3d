package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/logcolor"
)

// Compile flattens spec into token definitions ordered by priority.
//
// Nested entries are named parent_child and categorized under their parent.
// Every {name} placeholder is replaced by the referenced entry's pattern in a
// non-capturing group. A referenced entry is ordered after every entry that
// references it; otherwise definition order is kept.
func Compile(spec Spec) ([]logcolor.TokenDefinition, error) {
	c := &compiler{
		byName: make(map[string]*item),
		cache:  make(map[string]string),
		refs:   make(map[string]map[string]bool),
	}
	if err := c.index(spec, ""); err != nil {
		return nil, err
	}
	defs := make([]logcolor.TokenDefinition, 0, len(c.items))
	for _, it := range c.items {
		def, err := c.define(it)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return c.order(defs), nil
}

// item is one entry of the rule tree with its flattened name.
type item struct {
	name   string
	key    string
	parent string
	node   *Node
}

type compiler struct {
	items  []*item
	byName map[string]*item
	cache  map[string]string          // owner + ":" + source
	refs   map[string]map[string]bool // referenced name -> referencing names
}

func (c *compiler) index(spec Spec, parent string) error {
	seen := make(map[string]bool, len(spec))
	for i := range spec {
		e := &spec[i]
		if e.Name == "" {
			return errors.New("rules: token name cannot be empty")
		}
		name := qualify(parent, e.Name)
		if seen[e.Name] || c.byName[name] != nil {
			return &logcolor.DuplicateTokenError{Name: name}
		}
		seen[e.Name] = true
		it := &item{name: name, key: e.Name, parent: parent, node: &e.Node}
		c.items = append(c.items, it)
		c.byName[name] = it
		if e.Node.Kind == KindCategory {
			if err := c.index(e.Node.Children, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) define(it *item) (logcolor.TokenDefinition, error) {
	def := logcolor.TokenDefinition{Name: it.name}
	if it.parent != "" {
		def.Categories = []string{it.parent}
	}
	switch it.node.Kind {
	case KindCategory:
		def.Kind = logcolor.KindCategory
	case KindContextual:
		def.Kind = logcolor.KindContextual
	case KindPattern, KindAlternatives:
		src, flags, err := c.patternOf(it, []string{it.name})
		if err != nil {
			return def, err
		}
		def.Kind = logcolor.KindConcrete
		def.Pattern = src
		def.Flags = flags
		def.SubTokens = NamedCaptures(src)
	default:
		return def, fmt.Errorf("rules: token %q has unknown kind %d", it.name, it.node.Kind)
	}
	return def, nil
}

// patternOf returns the expanded pattern of a pattern or alternatives item.
func (c *compiler) patternOf(it *item, stack []string) (string, string, error) {
	patterns := it.node.Patterns
	if len(patterns) == 0 {
		return "", "", fmt.Errorf("rules: token %q has no patterns", it.name)
	}
	if it.node.Kind == KindPattern {
		src, err := c.expand(it.name, patterns[0].Source, stack)
		return src, patterns[0].Flags, err
	}
	parts := make([]string, 0, len(patterns))
	flags := ""
	for _, p := range patterns {
		src, err := c.expand(it.name, p.Source, stack)
		if err != nil {
			return "", "", err
		}
		parts = append(parts, "(?:"+src+")")
		flags = unionFlags(flags, p.Flags)
	}
	return strings.Join(parts, "|"), flags, nil
}

// expand replaces every {name} placeholder in source. Escaped braces and
// braces inside character classes are left alone.
func (c *compiler) expand(owner, source string, stack []string) (string, error) {
	key := owner + ":" + source
	if v, ok := c.cache[key]; ok {
		return v, nil
	}
	var b strings.Builder
	var class classState
	for i := 0; i < len(source); {
		if source[i] == '\\' {
			end := min(i+2, len(source))
			b.WriteString(source[i:end])
			i = end
			continue
		}
		if !class.visit(source, i) && source[i] == '{' {
			if id, n := placeholderAt(source, i); n > 0 {
				sub, err := c.substitute(owner, id, stack)
				if err != nil {
					return "", err
				}
				b.WriteString(sub)
				i += n
				continue
			}
		}
		b.WriteByte(source[i])
		i++
	}
	out := b.String()
	c.cache[key] = out
	return out, nil
}

func (c *compiler) substitute(owner, id string, stack []string) (string, error) {
	target := c.resolve(id)
	if target == nil {
		return "", &logcolor.UnknownTokenError{Name: id, Referrer: owner}
	}
	if slices.Contains(stack, target.name) {
		chain := append(append([]string(nil), stack...), target.name)
		return "", &logcolor.CircularReferenceError{Chain: chain}
	}
	next := append(stack[:len(stack):len(stack)], target.name)

	switch target.node.Kind {
	case KindPattern, KindAlternatives:
		c.reference(target.name, owner)
		src, flags, err := c.patternOf(target, next)
		if err != nil {
			return "", err
		}
		return group(src, flags), nil
	case KindCategory:
		c.reference(target.name, owner)
		var parts []string
		for _, d := range c.descendants(target) {
			if d.node.Kind != KindPattern && d.node.Kind != KindAlternatives {
				continue
			}
			if slices.Contains(next, d.name) {
				return "", &logcolor.CircularReferenceError{Chain: append(next[:len(next):len(next)], d.name)}
			}
			c.reference(d.name, owner)
			src, flags, err := c.patternOf(d, append(next[:len(next):len(next)], d.name))
			if err != nil {
				return "", err
			}
			parts = append(parts, group(src, flags))
		}
		if len(parts) == 0 {
			return "", &logcolor.UnknownTokenError{Name: id, Referrer: owner, Reason: "has no pattern"}
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil
	default:
		return "", &logcolor.UnknownTokenError{Name: id, Referrer: owner, Reason: "has no pattern"}
	}
}

// resolve finds an entry by flattened name, then by bare name in
// depth-first order.
func (c *compiler) resolve(id string) *item {
	if it, ok := c.byName[id]; ok {
		return it
	}
	for _, it := range c.items {
		if it.key == id {
			return it
		}
	}
	return nil
}

func (c *compiler) descendants(it *item) []*item {
	var out []*item
	for _, child := range it.node.Children {
		d := c.byName[qualify(it.name, child.Name)]
		out = append(out, d)
		if d.node.Kind == KindCategory {
			out = append(out, c.descendants(d)...)
		}
	}
	return out
}

func (c *compiler) reference(name, by string) {
	if name == by {
		return
	}
	if c.refs[name] == nil {
		c.refs[name] = make(map[string]bool)
	}
	c.refs[name][by] = true
}

// order sorts definitions so that every referencing definition precedes the
// definitions it references, keeping definition order where no reference
// constrains it, then assigns sequential priorities.
func (c *compiler) order(defs []logcolor.TokenDefinition) []logcolor.TokenDefinition {
	pos := make(map[string]int, len(defs))
	for i, d := range defs {
		pos[d.Name] = i
	}
	blockers := make([]int, len(defs))
	after := make([][]int, len(defs))
	for name, by := range c.refs {
		to := pos[name]
		for owner := range by {
			from := pos[owner]
			after[from] = append(after[from], to)
			blockers[to]++
		}
	}

	out := make([]logcolor.TokenDefinition, 0, len(defs))
	done := make([]bool, len(defs))
	for len(out) < len(defs) {
		next := -1
		for i := range defs {
			if !done[i] && blockers[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			// Unreachable for acyclic references; keep the rest as defined.
			for i := range defs {
				if !done[i] {
					done[i] = true
					out = append(out, defs[i])
				}
			}
			break
		}
		done[next] = true
		out = append(out, defs[next])
		for _, to := range after[next] {
			blockers[to]--
		}
	}
	for i := range out {
		out[i].Priority = i
	}
	return out
}

// placeholderAt returns the identifier of a {name} placeholder starting at
// src[i] and its length, or 0 when src[i] does not start one.
func placeholderAt(src string, i int) (string, int) {
	j := i + 1
	if j >= len(src) || !isIdentStart(src[j]) {
		return "", 0
	}
	for j < len(src) && isIdentPart(src[j]) {
		j++
	}
	if j >= len(src) || src[j] != '}' {
		return "", 0
	}
	return src[i+1 : j], j + 1 - i
}

// group wraps src in a non-capturing group carrying the regex-level flags
// the engine understands inline.
func group(src, flags string) string {
	var inline strings.Builder
	for _, f := range "imsx" {
		if strings.ContainsRune(flags, f) {
			inline.WriteRune(f)
		}
	}
	return "(?" + inline.String() + ":" + src + ")"
}

func unionFlags(a, b string) string {
	for _, f := range b {
		if !strings.ContainsRune(a, f) {
			a += string(f)
		}
	}
	return a
}

func qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "_" + name
}
