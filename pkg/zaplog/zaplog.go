// Package zaplog adapts a zap.Logger to the kratos log.Logger interface.
package zaplog

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ log.Logger = (*Logger)(nil)

// Logger writes kratos key/value records as zap fields. The "msg" key becomes
// the zap message.
type Logger struct {
	log *zap.Logger
}

// New wraps zl. Caller annotations are skipped because kratos adds its own.
func New(zl *zap.Logger) *Logger {
	return &Logger{log: zl.WithOptions(zap.WithCaller(false))}
}

// NewFromConfig builds a zap logger for the given level and format.
// Format "console" selects the development encoder, anything else JSON.
func NewFromConfig(level, format string) (*Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// kratos stamps its own "ts" and "caller" keys.
	cfg.EncoderConfig.TimeKey = ""
	cfg.DisableCaller = true

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(zl), nil
}

// Log implements log.Logger.
func (l *Logger) Log(level log.Level, keyvals ...any) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelInfo:
		l.log.Info(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError:
		l.log.Error(msg, fields...)
	case log.LevelFatal:
		l.log.Fatal(msg, fields...)
	}
	return nil
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.log.Sync()
}
