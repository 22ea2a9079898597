// Package logger wraps zap with the small surface the CLI needs.
package logger

import (
	"context"
	"strings"

	"github.com/rustyeddy/altchart/internal/id"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger backed by zap.
type Logger struct {
	logger *zap.Logger
}

// Field holds a key-value pair written with a log entry.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for Field{key, value}.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Level is the minimum severity that gets written.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// ParseLevel maps debug|info|warn|error to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures New.
type Options struct {
	Level Level
	// Encoding is "json" or "console". Defaults to json.
	Encoding string
	// OutputPaths defaults to stderr so that stdout stays free for chart
	// output.
	OutputPaths []string
}

// New builds a logger from zap's production config.
func New(opts Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(opts.Level.zapLevel())
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	if opts.Encoding == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger: z}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{logger: z}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

func (l *Logger) Sync() error { return l.logger.Sync() }

func (l *Logger) Debug(message string, fields ...Field) {
	l.logger.Debug(message, convert(fields)...)
}

func (l *Logger) Info(message string, fields ...Field) {
	l.logger.Info(message, convert(fields)...)
}

func (l *Logger) Warn(message string, fields ...Field) {
	l.logger.Warn(message, convert(fields)...)
}

// Error logs err as the message.
func (l *Logger) Error(err error, fields ...Field) {
	l.logger.Error(err.Error(), convert(fields)...)
}

// InfoContext logs at info level and appends the run id found in ctx.
func (l *Logger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.Info(message, withRun(ctx, fields)...)
}

func (l *Logger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.Warn(message, withRun(ctx, fields)...)
}

func (l *Logger) ErrorContext(ctx context.Context, err error, fields ...Field) {
	l.Error(err, withRun(ctx, fields)...)
}

// WithFields returns a child logger that always writes fields.
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{logger: l.logger.With(convert(fields)...)}
}

func convert(fields []Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func withRun(ctx context.Context, fields []Field) []Field {
	if runID := id.FromContext(ctx); runID != "" {
		return append(fields, F("run_id", runID))
	}
	return fields
}
