package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the zerolog backend. The zero value logs JSON at info level
// to stdout.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `json:"level"`
	// Format selects "console" or "json" output. Empty falls back to the
	// APP_ENV detection used by New.
	Format string `json:"format"`
	// File, when its Path is set, duplicates output into a size-rotated file.
	File FileConfig `json:"file"`
}

// FileConfig describes the rotated log file.
type FileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.File.Path != "" && c.File.MaxSizeMB == 0 {
		c.File.MaxSizeMB = 50
	}
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment
// variable to determine the output format. All logs include the provided
// component field.
func NewZerologLogger(component string) Logger {
	cfg := Config{Level: "info"}
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		cfg.Format = "console"
	} else {
		cfg.Format = "json"
	}
	return NewWithConfig(cfg, component)
}

// NewWithConfig creates a ZerologLogger from an explicit configuration.
func NewWithConfig(cfg Config, component string) Logger {
	cfg.SetDefaults()

	var out io.Writer = os.Stdout
	if format(cfg) == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if cfg.File.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		out = io.MultiWriter(out, rotated)
	}

	z := zerolog.New(out).Level(level(cfg.Level)).With().
		Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func format(cfg Config) string {
	if cfg.Format != "" {
		return strings.ToLower(cfg.Format)
	}
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return "console"
	}
	return "json"
}

func level(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
