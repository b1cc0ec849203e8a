package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatConsole
	}
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type Options struct {
	Level  zerolog.Level
	Format Format
	App    string
}

// New construye el logger del servicio: consola legible en dev, JSON en el
// resto de entornos.
func New(opts Options) zerolog.Logger {
	var l zerolog.Logger
	if opts.Format == FormatConsole {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		l = zerolog.New(os.Stdout)
	}

	ctx := l.Level(opts.Level).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}
	return ctx.Logger()
}

// NewFromEnv crea el logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=console|json (default console)
// - APP_NAME (opcional)
func NewFromEnv() zerolog.Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}
