package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/fwojciec/logcolor"
	"github.com/rs/zerolog"
)

// maxLineSize bounds a single input line.
const maxLineSize = 4 * 1024 * 1024

// DebugWriter receives one record per line instead of colored output.
type DebugWriter interface {
	Write(rec logcolor.DebugRecord) error
}

// App encapsulates the streaming loop for testing.
type App struct {
	In  io.Reader
	Out io.Writer

	// Preprocess rewrites input before coloring. When Buffered is false it
	// sees one line at a time.
	Preprocess logcolor.Preprocessor
	// Buffered reads the whole input before coloring, as multi-line joining
	// requires.
	Buffered bool
	Debug    DebugWriter
	Logger   zerolog.Logger

	engine atomic.Pointer[Engine]
}

// SetEngine replaces the engine used for subsequent lines.
func (a *App) SetEngine(e *Engine) {
	a.engine.Store(e)
}

// Run colors each input line until the input ends or ctx is done.
func (a *App) Run(ctx context.Context) error {
	out := bufio.NewWriter(a.Out)
	defer out.Flush()

	if a.Buffered {
		data, err := io.ReadAll(a.In)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		text := strings.TrimSuffix(string(data), "\n")
		if text == "" && len(data) == 0 {
			return nil
		}
		if a.Preprocess != nil {
			text = a.Preprocess.Process(text)
		}
		for i, line := range strings.Split(text, "\n") {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.emit(out, i+1, line); err != nil {
				return err
			}
		}
		return out.Flush()
	}

	scanner := bufio.NewScanner(a.In)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		line := scanner.Text()
		if a.Preprocess != nil {
			line = a.Preprocess.Process(line)
		}
		if err := a.emit(out, n, line); err != nil {
			return err
		}
		// Flush per line so output keeps up with a live stream.
		if err := out.Flush(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (a *App) emit(out *bufio.Writer, n int, line string) error {
	res, colored := a.color(n, line)
	if a.Debug != nil {
		return a.Debug.Write(logcolor.NewDebugRecord(n, res))
	}
	if _, err := out.WriteString(colored); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// color runs the current engine on line. A panic while coloring is logged
// and the line is passed through unchanged.
func (a *App) color(n int, line string) (res logcolor.ParseResult, colored string) {
	res = logcolor.ParseResult{Line: line}
	e := a.engine.Load()
	if e == nil {
		return res, line
	}
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error().Int("line", n).Interface("panic", r).Msg("coloring failed")
			colored = line
		}
	}()
	return e.Process(line)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "logcolor:", err)
		os.Exit(1)
	}
}
