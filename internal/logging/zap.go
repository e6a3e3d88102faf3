package logging

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cryptonaut/internal/common"
	"github.com/dmitrijs2005/cryptonaut/internal/filex"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the file sink built by New.
type Options struct {
	Debug    bool
	FilePath string
}

type ZapLogger struct {
	l    *zap.SugaredLogger
	file *os.File
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger {
	return NewZapLogger(zap.NewNop())
}

// New opens (or creates) the log file in append mode, creating missing parent
// directories, and returns a logger writing human-readable lines to it.
func New(opts Options) (*ZapLogger, error) {
	if _, err := filex.EnsureParentDir(opts.FilePath); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrLogSetup, err)
	}

	f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrLogSetup, err)
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(f), level)

	return &ZapLogger{l: zap.New(core).Sugar(), file: f}, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	return cfg
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	z.l.Debugw(msg, args...)
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	z.l.Infow(msg, args...)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	z.l.Warnw(msg, args...)
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	z.l.Errorw(msg, args...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Close flushes buffered entries and releases the log file, if any.
func (z *ZapLogger) Close() error {
	_ = z.l.Sync()
	if z.file == nil {
		return nil
	}
	return z.file.Close()
}
