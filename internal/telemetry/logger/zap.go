package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func newEncoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "source",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch strings.ToLower(format) {
	case "text", "console":
		return zapcore.NewConsoleEncoder(ec)
	default: // json
		return zapcore.NewJSONEncoder(ec)
	}
}

func newWriteSyncer(cfg Config) zapcore.WriteSyncer {
	if cfg.File != "" {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	}
	if cfg.Output == nil {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.Lock(zapcore.AddSync(cfg.Output))
}
