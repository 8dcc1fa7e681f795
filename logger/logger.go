package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. env selects the zap preset ("production"
// gets JSON with ISO8601 timestamps, anything else the colored dev config).
func New(env string) (*zap.Logger, error) {
	return NewWithWriter(env, nil)
}

// NewWithWriter builds the service logger, optionally tee'ing every entry to
// an extra sink (the CloudWatch Logs writer in production).
func NewWithWriter(env string, extra io.Writer) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if extra == nil {
		return cfg.Build()
	}

	level := zap.NewAtomicLevelAt(cfg.Level.Level())
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg.EncoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)
	extraCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.AddSync(extra),
		level,
	)
	core := zapcore.NewTee(consoleCore, extraCore)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
