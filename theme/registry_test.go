package theme_test

import (
	"bytes"
	"testing"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/theme"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("registers built-in palettes in order", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()

		assert.Equal(t, []string{"default", "none", "monokai", "catppuccin-mocha", "catppuccin-latte"}, r.Names())
	})

	t.Run("register replaces without reordering", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()
		r.Register(logcolor.Palette{Name: "monokai", Styles: map[string]logcolor.StyleSpec{"x": logcolor.Shorthand("red")}})
		r.Register(logcolor.Palette{Name: "mine"})

		assert.Equal(t, []string{"default", "none", "monokai", "catppuccin-mocha", "catppuccin-latte", "mine"}, r.Names())
		p, ok := r.Palette("monokai")
		require.True(t, ok)
		assert.Len(t, p.Styles, 1)
	})

	t.Run("names are a copy", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()
		names := r.Names()
		names[0] = "changed"

		assert.Equal(t, "default", r.Names()[0])
	})

	t.Run("built-in palettes are well formed", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()
		for _, name := range r.Names() {
			p, ok := r.Palette(name)
			require.True(t, ok, name)
			assert.Equal(t, name, p.Name)
			assert.NotEmpty(t, p.Description, name)
			for key, spec := range p.Styles {
				assert.False(t, spec.IsZero(), "%s: %s", name, key)
			}
		}
	})
}

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("unset removes an inherited key", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()

		resolved := r.Resolve(theme.Config{
			Parent:    "default",
			Overrides: map[string]logcolor.StyleSpec{"number": logcolor.Unset()},
		})

		_, ok := resolved.Lookup("number")
		assert.False(t, ok)
		_, ok = resolved.Lookup("boolean")
		assert.True(t, ok)
	})

	t.Run("overrides replace and add keys", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()

		resolved := r.Resolve(theme.Config{
			Parent: "none",
			Overrides: map[string]logcolor.StyleSpec{
				"ip":     logcolor.Shorthand("cyan"),
				"string": logcolor.Record(logcolor.StyleRecord{Color: "green", Bold: true}),
			},
		})

		assert.Equal(t, []string{"ip", "string"}, resolved.Keys())
		spec, ok := resolved.Lookup("ip")
		require.True(t, ok)
		assert.Equal(t, "cyan", spec.Shorthand)
		assert.Equal(t, "none", resolved.Name())
	})

	t.Run("empty parent means default", func(t *testing.T) {
		t.Parallel()

		resolved := theme.NewRegistry().Resolve(theme.Config{})

		assert.Equal(t, "default", resolved.Name())
		spec, ok := resolved.Lookup("timestamp")
		require.True(t, ok)
		assert.Equal(t, "cyan", spec.Shorthand)
	})

	t.Run("unknown parent warns and falls back to default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := theme.NewRegistry(theme.WithLogger(zerolog.New(&buf)))

		resolved := r.Resolve(theme.Config{Parent: "solarized"})

		assert.Equal(t, "default", resolved.Name())
		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"theme":"solarized"`)
		_, ok := resolved.Lookup("timestamp")
		assert.True(t, ok)
	})

	t.Run("resolving does not modify the parent", func(t *testing.T) {
		t.Parallel()

		r := theme.NewRegistry()
		r.Resolve(theme.Config{Overrides: map[string]logcolor.StyleSpec{
			"number":    logcolor.Unset(),
			"timestamp": logcolor.Shorthand("red"),
		}})

		p, _ := r.Palette("default")
		assert.Contains(t, p.Styles, "number")
		assert.Equal(t, "cyan", p.Styles["timestamp"].Shorthand)
	})

	t.Run("resolved themes are shareable", func(t *testing.T) {
		t.Parallel()

		resolved := theme.NewRegistry().Resolve(theme.Config{Parent: "monokai"})

		var g errgroup.Group
		for range 8 {
			g.Go(func() error {
				for _, key := range resolved.Keys() {
					if _, ok := resolved.Lookup(key); !ok {
						return assert.AnError
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
	})
}

func TestNewResolved(t *testing.T) {
	t.Parallel()

	resolved := theme.NewResolved("test", map[string]logcolor.StyleSpec{
		"a": logcolor.Shorthand("red"),
		"b": {},
		"c": logcolor.Unset(),
	})

	assert.Equal(t, []string{"a"}, resolved.Keys())
}
