package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/config"
	"github.com/fwojciec/logcolor/jsonl"
	"github.com/fwojciec/logcolor/lipgloss"
	"github.com/fwojciec/logcolor/logging"
	"github.com/fwojciec/logcolor/preprocess"
	"github.com/fwojciec/logcolor/yaml"
	termenvlib "github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootFlags struct {
	configFile   string
	debug        bool
	debugJSON    bool
	listThemes   bool
	sampleConfig bool
}

// NewRootCmd returns the logcolor command reading from in and writing
// colored lines to out and diagnostics to errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "logcolor [file]",
		Short: "Colorize log lines from stdin or a file",
		Long: `logcolor reads log lines, recognizes timestamps, levels, HTTP requests,
key=value pairs, quoted strings, addresses and more, and writes them back
with terminal colors. Token rules and styles can be extended from YAML.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags, in, out, errOut)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/logcolor/config.yaml or ~/.config/logcolor/config.yaml)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "print a token table and syntax tree per line")
	cmd.Flags().BoolVar(&flags.debugJSON, "debug-json", false, "print one JSON debug record per line")
	cmd.Flags().BoolVar(&flags.listThemes, "list-themes", false, "list available themes and exit")
	cmd.Flags().BoolVar(&flags.sampleConfig, "sample-config", false, "print an annotated config file and exit")
	config.RegisterFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("debug", "debug-json")

	return cmd
}

func run(cmd *cobra.Command, args []string, flags *rootFlags, in io.Reader, out, errOut io.Writer) error {
	if flags.sampleConfig {
		_, err := io.WriteString(out, yaml.Sample)
		return err
	}

	v, err := config.New(cmd.Flags(), flags.configFile)
	if err != nil {
		return err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:         cfg.LogLevel,
		HumanReadable: isTerminal(errOut),
		Writer:        errOut,
	})
	if err != nil {
		return err
	}

	registry := NewRegistry(logger)
	if flags.listThemes {
		for _, name := range registry.Names() {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}
		return nil
	}

	profile := colorProfile(cfg.Color, out)
	b := &builder{
		registry:   registry,
		profile:    profile,
		configFile: v.ConfigFileUsed(),
		logger:     logger,
	}
	engine, err := b.build(cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	app := &App{
		In:         in,
		Out:        out,
		Preprocess: preprocessors(cfg),
		Buffered:   cfg.JoinMultiline,
		Logger:     logger,
	}
	switch {
	case flags.debug:
		app.Debug = lipgloss.NewDebugWriter(out, lipgloss.WithProfile(profile))
	case flags.debugJSON:
		app.Debug = jsonl.NewWriter(out)
	}
	app.SetEngine(engine)

	ctx := cmd.Context()
	if cfg.Watch {
		err := config.Watch(ctx, v, config.DefaultDebounce, func(next config.Config) {
			e, err := b.build(next)
			if err != nil {
				logger.Error().Err(err).Msg("configuration reload failed")
				return
			}
			app.SetEngine(e)
			logger.Info().Str("file", v.ConfigFileUsed()).Msg("configuration reloaded")
		}, func(err error) {
			logger.Error().Err(err).Msg("configuration reload failed")
		})
		if errors.Is(err, config.ErrNoConfigFile) {
			logger.Warn().Msg("--watch given but no configuration file was found")
		} else if err != nil {
			return err
		}
	}

	return app.Run(ctx)
}

func preprocessors(cfg config.Config) logcolor.Preprocessor {
	var chain preprocess.Chain
	if cfg.JoinMultiline {
		chain = append(chain, preprocess.NewJoiner())
	}
	if cfg.DedupTimestamps {
		chain = append(chain, preprocess.NewDeduplicator(cfg.DedupMaxGap))
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

// colorProfile maps a color mode to a profile. Auto honours NO_COLOR and
// CLICOLOR_FORCE and only colors terminals.
func colorProfile(mode string, out io.Writer) termenvlib.Profile {
	switch mode {
	case config.ColorNever:
		return termenvlib.Ascii
	case config.ColorAlways:
		if p := termenvlib.NewOutput(out).EnvColorProfile(); p != termenvlib.Ascii {
			return p
		}
		return termenvlib.TrueColor
	}
	return termenvlib.NewOutput(out).EnvColorProfile()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
