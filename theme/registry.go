// Package theme provides the built-in palettes and resolves user theme
// overrides against them.
package theme

import (
	"maps"
	"slices"
	"sync"

	"github.com/fwojciec/logcolor"
	"github.com/rs/zerolog"
)

// Compile-time interface verification.
var _ logcolor.Theme = (*Resolved)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report unknown parent themes.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry holds named palettes. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]logcolor.Palette
	order    []string
	logger   zerolog.Logger
}

// NewRegistry returns a registry holding the built-in palettes.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		palettes: make(map[string]logcolor.Palette),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, p := range []logcolor.Palette{Default(), None(), Monokai(), Mocha(), Latte()} {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any palette with the same name.
func (r *Registry) Register(p logcolor.Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.palettes[p.Name]; !ok {
		r.order = append(r.order, p.Name)
	}
	r.palettes[p.Name] = p
}

// Names returns palette names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Palette returns the palette registered under name.
func (r *Registry) Palette(name string) (logcolor.Palette, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[name]
	return p, ok
}

// Config selects a parent palette and the overrides applied on top of it.
type Config struct {
	Parent    string // Defaults to DefaultName
	Overrides map[string]logcolor.StyleSpec
}

// Resolve copies the parent palette and applies cfg.Overrides key by key. An
// Unset override removes the key. An unknown parent is logged and replaced
// by the default palette.
func (r *Registry) Resolve(cfg Config) *Resolved {
	name := cfg.Parent
	if name == "" {
		name = DefaultName
	}
	parent, ok := r.Palette(name)
	if !ok {
		r.logger.Warn().Str("theme", name).Str("fallback", DefaultName).Msg("unknown parent theme")
		parent, _ = r.Palette(DefaultName)
		name = DefaultName
	}

	resolved := make(map[string]logcolor.StyleSpec, len(parent.Styles)+len(cfg.Overrides))
	maps.Copy(resolved, parent.Styles)
	for key, spec := range cfg.Overrides {
		if spec.Unset {
			delete(resolved, key)
			continue
		}
		resolved[key] = spec
	}
	return NewResolved(name, resolved)
}

// Resolved is an immutable key to style mapping.
type Resolved struct {
	name   string
	styles map[string]logcolor.StyleSpec
}

// NewResolved returns a theme holding a copy of styles. Unset and empty
// specs are dropped.
func NewResolved(name string, styles map[string]logcolor.StyleSpec) *Resolved {
	t := &Resolved{name: name, styles: make(map[string]logcolor.StyleSpec, len(styles))}
	for key, spec := range styles {
		if spec.Unset || spec.IsZero() {
			continue
		}
		t.styles[key] = spec
	}
	return t
}

// Name returns the name of the palette the theme was resolved from.
func (t *Resolved) Name() string {
	return t.name
}

// Lookup returns the style for key.
func (t *Resolved) Lookup(key string) (logcolor.StyleSpec, bool) {
	spec, ok := t.styles[key]
	return spec, ok
}

// Keys returns the defined keys in sorted order.
func (t *Resolved) Keys() []string {
	return slices.Sorted(maps.Keys(t.styles))
}
