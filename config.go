package lua

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Log output formats accepted in Config.LogFormat.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config describes how a state family is created. It is usually read from a
// TOML file:
//
//	name = "worker"
//	log_level = "debug"
//	log_format = "json"
//	inherit_extra = false
type Config struct {
	Name         string
	LogLevel     zerolog.Level
	LogFormat    string
	InheritExtra bool
}

type fileConfig struct {
	Name         string `toml:"name"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	InheritExtra bool   `toml:"inherit_extra"`
}

// DefaultConfig returns the settings used for keys missing from a config file.
func DefaultConfig() Config {
	return Config{
		Name:      "main",
		LogLevel:  zerolog.InfoLevel,
		LogFormat: LogFormatConsole,
	}
}

// LoadConfig reads a TOML config file. Keys that are not present keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load lua config: %w", err)
	}

	return raw.apply(meta)
}

// DecodeConfig parses TOML config text the same way LoadConfig does.
func DecodeConfig(text string) (Config, error) {
	var raw fileConfig

	meta, err := toml.Decode(text, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("decode lua config: %w", err)
	}

	return raw.apply(meta)
}

func (raw fileConfig) apply(meta toml.MetaData) (Config, error) {
	cfg := DefaultConfig()

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown lua config key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		if name := strings.TrimSpace(raw.Name); name != "" {
			cfg.Name = name
		}
	}

	if meta.IsDefined("log_level") {
		level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw.LogLevel)))
		if err != nil {
			return Config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = level
	}

	if meta.IsDefined("log_format") {
		switch format := strings.ToLower(strings.TrimSpace(raw.LogFormat)); format {
		case LogFormatConsole, LogFormatJSON:
			cfg.LogFormat = format
		default:
			return Config{}, fmt.Errorf("parse log_format: unsupported format %q", raw.LogFormat)
		}
	}

	if meta.IsDefined("inherit_extra") {
		cfg.InheritExtra = raw.InheritExtra
	}

	return cfg, nil
}

// Logger builds the zerolog logger described by c, writing to w.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	out := w
	if c.LogFormat != LogFormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(c.LogLevel).With().Timestamp().Str("state", c.Name).Logger()
}

// Options turns c into options for NewState, logging to w.
func (c Config) Options(w io.Writer) []StateOption {
	return []StateOption{
		WithName(c.Name),
		WithLogger(c.Logger(w)),
		WithInheritExtra(c.InheritExtra),
	}
}
