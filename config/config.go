// Package config loads settings from flags, the environment and a
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. LOGCOLOR_THEME.
const EnvPrefix = "LOGCOLOR"

// Setting keys. Flags use the same names with dashes.
const (
	KeyTheme           = "theme"
	KeyParser          = "parser"
	KeyRules           = "rules"
	KeyRelativeTime    = "relative_time"
	KeyDedupTimestamps = "dedup_timestamps"
	KeyDedupMaxGap     = "dedup_max_gap"
	KeyJoinMultiline   = "join_multiline"
	KeyColor           = "color"
	KeyStrict          = "strict"
	KeyMatchTimeout    = "match_timeout"
	KeyLogLevel        = "log_level"
	KeyWatch           = "watch"
)

// Parser and color mode values.
const (
	ParserGrammar = "grammar"
	ParserFlat    = "flat"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the resolved settings.
type Config struct {
	Theme           string        `mapstructure:"theme"`
	Parser          string        `mapstructure:"parser" validate:"oneof=grammar flat"`
	Rules           string        `mapstructure:"rules" validate:"omitempty,file"`
	RelativeTime    bool          `mapstructure:"relative_time"`
	DedupTimestamps bool          `mapstructure:"dedup_timestamps"`
	DedupMaxGap     time.Duration `mapstructure:"dedup_max_gap" validate:"min=0"`
	JoinMultiline   bool          `mapstructure:"join_multiline"`
	Color           string        `mapstructure:"color" validate:"oneof=auto always never"`
	Strict          bool          `mapstructure:"strict"`
	MatchTimeout    time.Duration `mapstructure:"match_timeout" validate:"min=0"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Watch           bool          `mapstructure:"watch"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	return Config{
		Theme:        "default",
		Parser:       ParserGrammar,
		DedupMaxGap:  time.Second,
		Color:        ColorAuto,
		MatchTimeout: 100 * time.Millisecond,
		LogLevel:     "warn",
	}
}

// RegisterFlags adds a flag for every setting to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.StringP(flag(KeyTheme), "t", d.Theme, "parent theme")
	fs.String(flag(KeyParser), d.Parser, "parser: grammar or flat")
	fs.String(flag(KeyRules), d.Rules, "YAML file with extra token rules and styles")
	fs.BoolP(flag(KeyRelativeTime), "r", d.RelativeTime, "append relative time to timestamps")
	fs.Bool(flag(KeyDedupTimestamps), d.DedupTimestamps, "drop repeated timestamps")
	fs.Duration(flag(KeyDedupMaxGap), d.DedupMaxGap, "largest gap between timestamps treated as repeated")
	fs.Bool(flag(KeyJoinMultiline), d.JoinMultiline, "join multi-line JSON and indented continuations")
	fs.String(flag(KeyColor), d.Color, "color output: auto, always or never")
	fs.Bool(flag(KeyStrict), d.Strict, "print lines with lex or parse errors uncolored")
	fs.Duration(flag(KeyMatchTimeout), d.MatchTimeout, "regex match timeout per token, 0 disables")
	fs.String(flag(KeyLogLevel), d.LogLevel, "diagnostic log level")
	fs.Bool(flag(KeyWatch), d.Watch, "reload configuration when the file changes")
}

// New returns a viper instance reading defaults, the configuration file,
// LOGCOLOR_* variables and the flags in fs, in increasing precedence. With
// an empty path the file is looked up in the user config directory; a
// missing file there is not an error.
func New(fs *pflag.FlagSet, path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range keys {
			if f := fs.Lookup(flag(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %q: %w", f.Name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg Config) error {
	if err := validatorInstance().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var keys = []string{
	KeyTheme, KeyParser, KeyRules, KeyRelativeTime, KeyDedupTimestamps, KeyDedupMaxGap,
	KeyJoinMultiline, KeyColor, KeyStrict, KeyMatchTimeout, KeyLogLevel, KeyWatch,
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyTheme, d.Theme)
	v.SetDefault(KeyParser, d.Parser)
	v.SetDefault(KeyRules, d.Rules)
	v.SetDefault(KeyRelativeTime, d.RelativeTime)
	v.SetDefault(KeyDedupTimestamps, d.DedupTimestamps)
	v.SetDefault(KeyDedupMaxGap, d.DedupMaxGap)
	v.SetDefault(KeyJoinMultiline, d.JoinMultiline)
	v.SetDefault(KeyColor, d.Color)
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyMatchTimeout, d.MatchTimeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyWatch, d.Watch)
}

// searchDirs lists $XDG_CONFIG_HOME/logcolor then ~/.config/logcolor.
func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "logcolor"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "logcolor"))
	}
	return dirs
}

func flag(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}
