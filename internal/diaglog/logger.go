package diaglog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/undercity/undercity-server-go/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger on top of an asynchronous Writer. The caller
// owns the writer and should Stop it on shutdown.
func New(cfg config.LoggingConfig) (*zap.Logger, *Writer, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	w := NewWriter(sink, Options{
		QueueSize:     cfg.QueueSize,
		BufferSize:    cfg.BufferSize,
		FlushInterval: cfg.FlushInterval,
	})
	core := zapcore.NewCore(newEncoder(cfg.Format), w, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	return zap.New(core, zap.AddCaller()), w, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func openSink(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return f, nil
	}
}
