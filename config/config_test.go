package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/logcolor/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config lookup at empty directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func load(t *testing.T, fs *pflag.FlagSet, path string) config.Config {
	t.Helper()
	v, err := config.New(fs, path)
	require.NoError(t, err)
	cfg, err := config.Decode(v)
	require.NoError(t, err)
	return cfg
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		isolate(t)

		cfg := load(t, nil, "")

		assert.Equal(t, config.Defaults(), cfg)
	})

	t.Run("explicit file", func(t *testing.T) {
		dir := isolate(t)
		rules := filepath.Join(dir, "rules.yaml")
		writeFile(t, rules, "tokens: {}\n")
		path := filepath.Join(dir, "logcolor.yaml")
		writeFile(t, path, "theme: monokai\nparser: flat\nrules: "+rules+"\nrelative_time: true\ndedup_max_gap: 2s\ncolor: never\n")

		cfg := load(t, nil, path)

		assert.Equal(t, "monokai", cfg.Theme)
		assert.Equal(t, config.ParserFlat, cfg.Parser)
		assert.Equal(t, rules, cfg.Rules)
		assert.True(t, cfg.RelativeTime)
		assert.Equal(t, 2*time.Second, cfg.DedupMaxGap)
		assert.Equal(t, config.ColorNever, cfg.Color)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("file in XDG config home", func(t *testing.T) {
		dir := isolate(t)
		writeFile(t, filepath.Join(dir, "xdg", "logcolor", "config.yaml"), "theme: catppuccin-mocha\n")

		cfg := load(t, nil, "")

		assert.Equal(t, "catppuccin-mocha", cfg.Theme)
	})

	t.Run("file in home config dir", func(t *testing.T) {
		dir := isolate(t)
		writeFile(t, filepath.Join(dir, "home", ".config", "logcolor", "config.yaml"), "strict: true\n")

		cfg := load(t, nil, "")

		assert.True(t, cfg.Strict)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "theme: monokai\n")
		t.Setenv("LOGCOLOR_THEME", "none")
		t.Setenv("LOGCOLOR_RELATIVE_TIME", "true")

		cfg := load(t, nil, path)

		assert.Equal(t, "none", cfg.Theme)
		assert.True(t, cfg.RelativeTime)
	})

	t.Run("flags override environment", func(t *testing.T) {
		isolate(t)
		t.Setenv("LOGCOLOR_THEME", "none")
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.RegisterFlags(fs)
		require.NoError(t, fs.Parse([]string{"-t", "monokai", "-r", "--match-timeout", "5ms"}))

		cfg := load(t, fs, "")

		assert.Equal(t, "monokai", cfg.Theme)
		assert.True(t, cfg.RelativeTime)
		assert.Equal(t, 5*time.Millisecond, cfg.MatchTimeout)
	})

	t.Run("unset flags keep lower layers", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "parser: flat\n")
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.RegisterFlags(fs)
		require.NoError(t, fs.Parse(nil))

		cfg := load(t, fs, path)

		assert.Equal(t, config.ParserFlat, cfg.Parser)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		dir := isolate(t)

		_, err := config.New(nil, filepath.Join(dir, "absent.yaml"))

		assert.ErrorContains(t, err, "read config")
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "theme: [unclosed\n")

		_, err := config.New(nil, path)

		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown parser", func(c *config.Config) { c.Parser = "regex" }},
		{"unknown color mode", func(c *config.Config) { c.Color = "sometimes" }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "verbose" }},
		{"negative gap", func(c *config.Config) { c.DedupMaxGap = -time.Second }},
		{"negative timeout", func(c *config.Config) { c.MatchTimeout = -time.Millisecond }},
		{"missing rules file", func(c *config.Config) { c.Rules = "/nonexistent/rules.yaml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Defaults()
			tt.modify(&cfg)

			err := config.Validate(cfg)

			assert.ErrorContains(t, err, "invalid configuration")
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, config.Validate(config.Defaults()))
	})
}

func TestWatch(t *testing.T) {
	t.Run("requires a file", func(t *testing.T) {
		isolate(t)
		v, err := config.New(nil, "")
		require.NoError(t, err)

		err = config.Watch(context.Background(), v, config.DefaultDebounce, func(config.Config) {}, nil)

		assert.ErrorIs(t, err, config.ErrNoConfigFile)
	})

	t.Run("delivers reloaded settings", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "theme: default\n")
		v, err := config.New(nil, path)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		var mu sync.Mutex
		var got []config.Config
		err = config.Watch(ctx, v, 10*time.Millisecond, func(cfg config.Config) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, cfg)
		}, nil)
		require.NoError(t, err)

		writeFile(t, path, "theme: monokai\n")

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) > 0 && got[len(got)-1].Theme == "monokai"
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("reports invalid settings", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "parser: grammar\n")
		v, err := config.New(nil, path)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		errs := make(chan error, 8)
		err = config.Watch(ctx, v, 10*time.Millisecond, func(config.Config) {}, func(err error) {
			select {
			case errs <- err:
			default:
			}
		})
		require.NoError(t, err)

		writeFile(t, path, "parser: regex\n")

		select {
		case err := <-errs:
			assert.ErrorContains(t, err, "invalid configuration")
		case <-time.After(5 * time.Second):
			t.Fatal("no reload error reported")
		}
	})
}
