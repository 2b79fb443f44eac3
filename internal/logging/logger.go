package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const FileName = "uptime.log"

// NewLogger writes JSON logs to a rotating file in logDir and mirrors them to stderr.
func NewLogger(logDir string) (*zap.Logger, error) {
	return newLogger(logDir, zapcore.Lock(os.Stderr))
}

func newLogger(logDir string, console zapcore.WriteSyncer) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	enc := zapcore.NewJSONEncoder(cfg)

	cores := []zapcore.Core{zapcore.NewCore(enc, w, zap.InfoLevel)}
	if console != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), console, zap.InfoLevel))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
