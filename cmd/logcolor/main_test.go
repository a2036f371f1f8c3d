package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/logcolor"
	main "github.com/fwojciec/logcolor/cmd/logcolor"
	"github.com/fwojciec/logcolor/mock"
	"github.com/fwojciec/logcolor/preprocess"
	"github.com/fwojciec/logcolor/yaml"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bracketEngine() *main.Engine {
	return &main.Engine{
		Parser: &mock.Parser{ParseFn: func(line string) logcolor.ParseResult {
			res := logcolor.ParseResult{Line: line}
			if strings.Contains(line, "bad") {
				res.LexErrors = []logcolor.LexError{{Offset: 0, Length: 3, Message: "unexpected"}}
			}
			return res
		}},
		Renderer: &mock.Renderer{RenderFn: func(res logcolor.ParseResult, _ logcolor.Theme) string {
			if res.Line == "boom" {
				panic("renderer exploded")
			}
			return "<" + res.Line + ">"
		}},
	}
}

type recordingDebug struct {
	records []logcolor.DebugRecord
}

func (d *recordingDebug) Write(rec logcolor.DebugRecord) error {
	d.records = append(d.records, rec)
	return nil
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("colors each line", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("a\nb\n\nc"), Out: &out}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<a>\n<b>\n<>\n<c>\n", out.String())
	})

	t.Run("strict passes lines with errors through", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("good\nbad line\n"), Out: &out}
		e := bracketEngine()
		e.Strict = true
		app.SetEngine(e)

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<good>\nbad line\n", out.String())
	})

	t.Run("lenient mode colors lines with errors", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("bad line\n"), Out: &out}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<bad line>\n", out.String())
	})

	t.Run("recovers from a failing line", func(t *testing.T) {
		t.Parallel()

		var out, logs bytes.Buffer
		app := &main.App{In: strings.NewReader("a\nboom\nb\n"), Out: &out, Logger: zerolog.New(&logs)}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<a>\nboom\n<b>\n", out.String())
		assert.Contains(t, logs.String(), "coloring failed")
		assert.Contains(t, logs.String(), `"line":2`)
	})

	t.Run("debug replaces colored output", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		debug := &recordingDebug{}
		app := &main.App{In: strings.NewReader("a\nbad\n"), Out: &out, Debug: debug}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Empty(t, out.String())
		require.Len(t, debug.records, 2)
		assert.Equal(t, 1, debug.records[0].LineNumber)
		assert.Equal(t, "a", debug.records[0].Line)
		assert.Equal(t, []string{"lex error at 0: unexpected"}, debug.records[1].Errors)
	})

	t.Run("preprocesses each line", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		var seen []string
		app := &main.App{
			In:  strings.NewReader("a\nb\n"),
			Out: &out,
			Preprocess: &mock.Preprocessor{ProcessFn: func(input string) string {
				seen = append(seen, input)
				return strings.ToUpper(input)
			}},
		}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, []string{"a", "b"}, seen)
		assert.Equal(t, "<A>\n<B>\n", out.String())
	})

	t.Run("buffered input is preprocessed whole", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{
			In:         strings.NewReader("Error: boom\n  at foo\n  at bar\nnext\n"),
			Out:        &out,
			Preprocess: preprocess.NewJoiner(),
			Buffered:   true,
		}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<Error: boom at foo at bar>\n<next>\n", out.String())
	})

	t.Run("buffered empty input", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader(""), Out: &out, Buffered: true}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Empty(t, out.String())
	})

	t.Run("without an engine lines pass through", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("a\n"), Out: &out}

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "a\n", out.String())
	})

	t.Run("engine can be replaced", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("a\n"), Out: &out}
		app.SetEngine(bracketEngine())
		app.SetEngine(&main.Engine{
			Parser:   &mock.Parser{ParseFn: func(line string) logcolor.ParseResult { return logcolor.ParseResult{Line: line} }},
			Renderer: &mock.Renderer{RenderFn: func(res logcolor.ParseResult, _ logcolor.Theme) string { return "[" + res.Line + "]" }},
		})

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "[a]\n", out.String())
	})

	t.Run("long lines", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("x", 200*1024)
		var out bytes.Buffer
		app := &main.App{In: strings.NewReader(long + "\n"), Out: &out}
		app.SetEngine(bracketEngine())

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, "<"+long+">\n", out.String())
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		app := &main.App{In: strings.NewReader("a\n"), Out: &out}
		app.SetEngine(bracketEngine())

		err := app.Run(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out.String())
	})
}

// isolate keeps the command away from the user's configuration and color
// environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := main.NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleLog = "2024-01-15T10:30:00Z ERROR [main.go:42] GET /api/users 500 user=\"alice\" took=12ms\n"

func TestRootCmd(t *testing.T) {
	t.Run("never color passes text through", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, sampleLog, "--color", "never")

		require.NoError(t, err)
		assert.Equal(t, sampleLog, out)
	})

	t.Run("always color keeps the text", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, sampleLog, "--color", "always")

		require.NoError(t, err)
		assert.Contains(t, out, "\x1b[")
		assert.Equal(t, sampleLog, ansi.Strip(out))
	})

	t.Run("every theme renders", func(t *testing.T) {
		isolate(t)

		names, err := execute(t, "", "--list-themes")
		require.NoError(t, err)

		for _, name := range strings.Fields(names) {
			out, err := execute(t, sampleLog, "--color", "always", "-t", name)
			require.NoError(t, err, name)
			assert.Equal(t, sampleLog, ansi.Strip(out), name)
		}
	})

	t.Run("lists themes", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, "", "--list-themes")

		require.NoError(t, err)
		names := strings.Fields(out)
		assert.Equal(t, "default", names[0])
		assert.Contains(t, names, "none")
		assert.Contains(t, names, "monokai")
		assert.Contains(t, names, "dracula")
	})

	t.Run("prints the sample config", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, "", "--sample-config")

		require.NoError(t, err)
		assert.Equal(t, yaml.Sample, out)
	})

	t.Run("user rules and styles", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "rules.yaml")
		writeFile(t, path, "tokens:\n  ticket: /JIRA-\\d+/\nstyles:\n  ticket: magenta\n")

		out, err := execute(t, "fixes JIRA-12\n", "--color", "always", "--rules", path)

		require.NoError(t, err)
		assert.Contains(t, out, "\x1b[35mJIRA-12\x1b[0m")
	})

	t.Run("config file sections", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "theme: none\ncolor: always\ntokens:\n  ticket: /JIRA-\\d+/\nstyles:\n  ticket: red\n")

		out, err := execute(t, "fixes JIRA-12\n", "--config", path)

		require.NoError(t, err)
		assert.Equal(t, "fixes \x1b[31mJIRA-12\x1b[0m\n", out)
	})

	t.Run("rules file styles win over config file styles", func(t *testing.T) {
		dir := isolate(t)
		cfgPath := filepath.Join(dir, "config.yaml")
		writeFile(t, cfgPath, "theme: none\ntokens:\n  ticket: /JIRA-\\d+/\nstyles:\n  ticket: red\n")
		rulesPath := filepath.Join(dir, "rules.yaml")
		writeFile(t, rulesPath, "styles:\n  ticket: green\n")

		out, err := execute(t, "JIRA-1\n", "--config", cfgPath, "--rules", rulesPath, "--color", "always")

		require.NoError(t, err)
		assert.Equal(t, "\x1b[32mJIRA-1\x1b[0m\n", out)
	})

	t.Run("reads the configuration directory", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "xdg", "logcolor"), 0o755))
		writeFile(t, filepath.Join(dir, "xdg", "logcolor", "config.yaml"), "color: never\n")

		out, err := execute(t, sampleLog)

		require.NoError(t, err)
		assert.Equal(t, sampleLog, out)
	})

	t.Run("debug json", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, "INFO ready\nWARN slow\n", "--debug-json")

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		var rec logcolor.DebugRecord
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
		assert.Equal(t, 2, rec.LineNumber)
		assert.Equal(t, "WARN slow", rec.Line)
		require.NotEmpty(t, rec.Tokens)
		assert.Equal(t, "logLevel", rec.Tokens[0].Type)
		require.NotNil(t, rec.Tree)
		assert.Equal(t, "logLine", rec.Tree.Rule)
	})

	t.Run("debug table", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, "INFO ready\n", "--debug", "--color", "never")

		require.NoError(t, err)
		assert.Contains(t, out, "line 1: INFO ready")
		assert.Contains(t, out, "TYPE")
		assert.Contains(t, out, "logLevel")
	})

	t.Run("debug modes exclude each other", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "", "--debug", "--debug-json")

		assert.Error(t, err)
	})

	t.Run("joins and deduplicates", func(t *testing.T) {
		isolate(t)
		input := "2024-01-15T10:00:00Z 2024-01-15T10:00:00Z Error: boom\n  at foo\nnext\n"

		out, err := execute(t, input, "--color", "never", "--join-multiline", "--dedup-timestamps")

		require.NoError(t, err)
		assert.Equal(t, "2024-01-15T10:00:00Z Error: boom at foo\nnext\n", out)
	})

	t.Run("flat parser", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, sampleLog, "--color", "always", "--parser", "flat")

		require.NoError(t, err)
		assert.Equal(t, sampleLog, ansi.Strip(out))
	})

	t.Run("input file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "INFO from file\n")

		out, err := execute(t, "ignored\n", "--color", "never", path)

		require.NoError(t, err)
		assert.Equal(t, "INFO from file\n", out)
	})

	t.Run("missing input file", func(t *testing.T) {
		dir := isolate(t)

		_, err := execute(t, "", filepath.Join(dir, "absent.log"))

		assert.ErrorContains(t, err, "open input")
	})

	t.Run("invalid settings", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "", "--parser", "regex")

		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("invalid rules", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "rules.yaml")
		writeFile(t, path, "tokens:\n  broken: /{nope}x/\n")

		_, err := execute(t, "", "--rules", path)

		assert.ErrorContains(t, err, "compile rules")
	})

	t.Run("unknown theme falls back to default", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, sampleLog, "--color", "always", "-t", "missing")

		require.NoError(t, err)
		assert.Equal(t, sampleLog, ansi.Strip(out))
	})
}
