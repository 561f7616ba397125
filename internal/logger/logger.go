package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 控制日志输出
type Options struct {
	// Debug enables debug level on every sink.
	Debug bool
	// File is the rolling log file path; empty disables file logging.
	File string
	// Console 默认输出到 stderr，保持 stdout 给命令结果
	Console zapcore.WriteSyncer
}

// New creates a new zap logger configured for console output
// with line numbers and no timestamps, teed into a rolling file when
// opts.File is set.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "level",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalColorLevelEncoder, // Colored level names
		EncodeCaller:  zapcore.ShortCallerEncoder,       // Show file:line
		// TimeKey is omitted to remove timestamps
	})

	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, console, level)}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		rolling := &lumberjack.Logger{
			Filename:   filepath.ToSlash(opts.File),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(rolling), level))
	}

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Debug {
		// Only show stack traces in debug mode
		zapOpts = append(zapOpts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zapOpts...), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
