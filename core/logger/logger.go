package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging interface used across the framework.
// All kernel lifecycle records and module services log through it.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Config controls logger construction.
type Config struct {
	Environment string // "development" enables console encoding
	LogPath     string // directory for the rotating app log; empty disables file output
	Level       string // debug, info, warn, error
}

// Field is a typed key/value pair attached to a log record.
type Field struct {
	zap zap.Field
}

func String(key, value string) Field        { return Field{zap.String(key, value)} }
func Int(key string, value int) Field       { return Field{zap.Int(key, value)} }
func Int64(key string, value int64) Field   { return Field{zap.Int64(key, value)} }
func Uint(key string, value uint) Field     { return Field{zap.Uint(key, value)} }
func Bool(key string, value bool) Field     { return Field{zap.Bool(key, value)} }
func Any(key string, value any) Field       { return Field{zap.Any(key, value)} }
func Err(err error) Field                   { return Field{zap.Error(err)} }
func Duration(key string, d time.Duration) Field { return Field{zap.Duration(key, d)} }
func Strings(key string, v []string) Field  { return Field{zap.Strings(key, v)} }

type zapLogger struct {
	log *zap.Logger
}

// NewLogger builds a zap-backed Logger from the given config.
func NewLogger(config Config) (Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(config.Level); config.Level != "" && err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if config.Environment == "development" {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(devCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if config.LogPath != "" {
		if err := os.MkdirAll(config.LogPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(config.LogPath, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.Lock(file), level))
	}

	return &zapLogger{log: zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() Logger {
	return &zapLogger{log: zap.NewNop()}
}

func unwrap(fields []Field) []zap.Field {
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		zf[i] = f.zap
	}
	return zf
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.log.Debug(msg, unwrap(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.log.Info(msg, unwrap(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.log.Warn(msg, unwrap(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.log.Error(msg, unwrap(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{log: l.log.With(unwrap(fields)...)}
}
