package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) toZerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output por defecto es os.Stdout.
	Output io.Writer
}

// ZeroLogger adapta zerolog a la interfaz Logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

func New(opts Options) Logger {
	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(opts.Level.toZerolog()).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}
	return &ZeroLogger{zl: ctx.Logger()}
}

// Nop descarta todo. Para tests.
func Nop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

func (l *ZeroLogger) With(fields map[string]any) Logger {
	clean := cleanFields(fields)
	if len(clean) == 0 {
		return l
	}
	return &ZeroLogger{zl: l.zl.With().Fields(clean).Logger()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]any) {
	l.zl.Debug().Fields(cleanFields(fields)).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]any) {
	l.zl.Info().Fields(cleanFields(fields)).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]any) {
	l.zl.Warn().Fields(cleanFields(fields)).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, fields map[string]any) {
	l.zl.Error().Fields(cleanFields(fields)).Msg(msg)
}

// cleanFields descarta keys vacías; los error se pasan como string.
func cleanFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		out[k] = v
	}
	return out
}
