package main

import (
	"fmt"
	"maps"

	"github.com/fwojciec/logcolor"
	"github.com/fwojciec/logcolor/chroma"
	"github.com/fwojciec/logcolor/config"
	"github.com/fwojciec/logcolor/parser"
	"github.com/fwojciec/logcolor/regexp2"
	"github.com/fwojciec/logcolor/rules"
	"github.com/fwojciec/logcolor/termenv"
	"github.com/fwojciec/logcolor/theme"
	"github.com/fwojciec/logcolor/yaml"
	termenvlib "github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// Engine is the immutable set of components that colors one line.
type Engine struct {
	Parser   logcolor.Parser
	Renderer logcolor.Renderer
	Theme    logcolor.Theme
	// Strict passes lines with lex or parse errors through uncolored.
	Strict bool
}

// Process parses and renders line.
func (e *Engine) Process(line string) (logcolor.ParseResult, string) {
	res := e.Parser.Parse(line)
	if e.Strict && res.HasErrors() {
		return res, line
	}
	return res, e.Renderer.Render(res, e.Theme)
}

// NewRegistry returns the built-in palettes plus those derived from Chroma
// styles.
func NewRegistry(logger zerolog.Logger) *theme.Registry {
	r := theme.NewRegistry(theme.WithLogger(logger))
	for _, p := range chroma.Palettes(theme.Default(), chroma.DefaultStyles...) {
		r.Register(p)
	}
	return r
}

// builder turns settings into engines. configFile is the file viper read,
// whose tokens and styles sections apply under those of the rules file.
type builder struct {
	registry   *theme.Registry
	profile    termenvlib.Profile
	configFile string
	logger     zerolog.Logger
}

func (b *builder) build(cfg config.Config) (*Engine, error) {
	var docs []yaml.Document
	for _, path := range []string{b.configFile, cfg.Rules} {
		if path == "" {
			continue
		}
		doc, err := yaml.Load(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	parent := cfg.Theme
	var user rules.Spec
	overrides := make(map[string]logcolor.StyleSpec)
	for _, doc := range docs {
		user = rules.Merge(user, doc.Tokens)
		maps.Copy(overrides, doc.Styles)
		if doc.Theme != "" && parent == config.Defaults().Theme {
			parent = doc.Theme
		}
	}

	defs, err := rules.Compile(parser.LogRulesWith(user))
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	catalog, err := regexp2.NewCatalog(defs,
		regexp2.WithMatchTimeout(cfg.MatchTimeout),
		regexp2.WithLogger(b.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build token catalog: %w", err)
	}

	var p logcolor.Parser = parser.NewGrammar(catalog)
	if cfg.Parser == config.ParserFlat {
		p = parser.NewFlat(catalog)
	}

	return &Engine{
		Parser: p,
		Renderer: termenv.NewColorizer(
			termenv.WithProfile(b.profile),
			termenv.WithRelativeTime(cfg.RelativeTime),
		),
		Theme:  b.registry.Resolve(theme.Config{Parent: parent, Overrides: overrides}),
		Strict: cfg.Strict,
	}, nil
}
