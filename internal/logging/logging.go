// Package logging configures the process logger and the per-request field
// store whose contents are merged into every entry logged for that request.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Format selects how entries are rendered.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Config holds logger settings. Zero values mean JSON at info level on stdout.
type Config struct {
	Format Format
	Level  string
	Output io.Writer
}

var (
	once sync.Once
	root zerolog.Logger
)

// New builds a logger from cfg. Entries logged with a context carrying a
// *Fields store include the bound fields.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		Hook(contextHook{}).
		With().Timestamp().Logger()
}

// Init installs the process logger. Only the first call has any effect.
func Init(cfg Config) {
	once.Do(func() {
		root = New(cfg)
	})
}

// Get returns a child of the process logger tagged with name.
func Get(name string) zerolog.Logger {
	Init(Config{})
	return Named(root, name)
}

// Named tags l with a logger name.
func Named(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("logger", name).Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type contextHook struct{}

func (contextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	f := FieldsFromContext(e.GetCtx())
	if f == nil {
		return
	}
	f.each(func(k string, v any) {
		e.Interface(k, v)
	})
}
