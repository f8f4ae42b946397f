package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	Sync() error
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, console).
	Format string
	// Output is the output writer (defaults to os.Stderr). Ignored when
	// File is set.
	Output io.Writer
	// File, when non-empty, sends output to a rotating log file.
	File string
	// MaxSizeMB is the size at which File is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
	// AddSource adds caller information to log entries.
	AddSource bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     os.Stderr,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// zapLogger adapts a zap.SugaredLogger to Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
	ctx   context.Context
}

// globalLevel holds the current log level for dynamic adjustment.
var globalLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// New creates a new logger with the given configuration.
func New(cfg Config) (Logger, error) {
	globalLevel.SetLevel(parseLevel(cfg.Level))

	core := zapcore.NewCore(newEncoder(cfg.Format), newWriteSyncer(cfg), globalLevel)

	var opts []zap.Option
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return &zapLogger{
		sugar: zap.New(core, opts...).Sugar(),
		ctx:   context.Background(),
	}, nil
}

// SetLevel dynamically sets the global log level.
// This allows runtime log level adjustment (e.g., on config reload).
func SetLevel(level string) {
	globalLevel.SetLevel(parseLevel(level))
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	switch globalLevel.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.InfoLevel:
		return "info"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

func (l *zapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *zapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{
		sugar: l.sugar.With(args...),
		ctx:   l.ctx,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	sugar := l.sugar
	if id := ConnIDFromContext(ctx); id != "" {
		sugar = sugar.With("conn", id)
	}
	return &zapLogger{
		sugar: sugar,
		ctx:   ctx,
	}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

// parseLevel converts a string level to a zap level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Global logger instance for convenience methods.
var defaultLogger atomic.Pointer[zapLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*zapLogger))
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if zl, ok := l.(*zapLogger); ok {
		defaultLogger.Store(zl)
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	defaultLogger.Load().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	defaultLogger.Load().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	defaultLogger.Load().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	defaultLogger.Load().Error(msg, args...)
}
