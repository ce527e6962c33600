// Package logging builds the zap logger shared by every command.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// Options selects level and encoding. An empty Level falls back to
// PRINTCURATE_LOG_LEVEL and then to info.
type Options struct {
	Level   string
	Verbose bool
	JSON    bool
}

// New constructs a structured logger writing to stderr, so stdout stays
// free for command output.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	raw := opts.Level
	if raw == "" {
		raw = os.Getenv("PRINTCURATE_LOG_LEVEL")
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(raw)))); err != nil || raw == "" {
		_ = level.UnmarshalText([]byte(defaultLevel))
	}
	if opts.Verbose && level.Level() > zapcore.DebugLevel {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(l.String()))
		},
	}
	encoding := "console"
	if opts.JSON {
		encoding = "json"
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !opts.Verbose,
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
