package logging

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger is a thin key/value facade over zap. Context variants append the
// active trace and span ids so log lines join up with exported spans.
type Logger struct {
	zap    *zap.Logger
	synced atomic.Bool
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewNop())
}

// ParseLevel maps debug/info/warn(ing)/error to a level; anything else is info.
func ParseLevel(v string) Level {
	value := strings.ToLower(strings.TrimSpace(v))
	if value == "warning" {
		value = "warn"
	}
	level, err := zapcore.ParseLevel(value)
	if err != nil || level > LevelError {
		return LevelInfo
	}
	return level
}

func NewJSON(level Level) *Logger {
	return NewJSONWriter(os.Stdout, level)
}

// NewJSONWriter writes JSON lines to w; tests pass a buffer.
func NewJSONWriter(w io.Writer, level Level) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel)))
}

func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z}
}

func Default() *Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	return NewNop()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	defaultLogger.Store(logger)
}

func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.zap == nil {
		return zap.NewNop()
	}
	return l.zap
}

// Sync flushes buffered entries once. Terminals and pipes reject fsync, so
// EINVAL and ENOTTY are not reported.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil || !l.synced.CompareAndSwap(false, true) {
		return nil
	}
	err := l.zap.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func (l *Logger) Enabled(level Level) bool {
	return l.Zap().Core().Enabled(level)
}

func (l *Logger) With(args ...any) *Logger {
	return FromZap(l.Zap().With(zapFields(args)...))
}

// Named scopes the logger to a component, e.g. "scheduler".
func (l *Logger) Named(name string) *Logger {
	return FromZap(l.Zap().Named(name))
}

func (l *Logger) Debug(msg string, args ...any) {
	l.write(context.Background(), LevelDebug, msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.write(context.Background(), LevelInfo, msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.write(context.Background(), LevelWarn, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.write(context.Background(), LevelError, msg, args)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args)
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args []any) {
	logger := l
	if logger == nil || logger.zap == nil {
		logger = Default()
	}

	ce := logger.zap.Check(level, msg)
	if ce == nil {
		return
	}
	fields := zapFields(args)
	fields = append(fields, traceFields(ctx)...)
	ce.Write(fields...)
}

func traceFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// zapFields pairs up alternating keys and values. A non-string key becomes
// "arg" and a trailing key without a value is logged as null.
func zapFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, (len(args)+1)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg"
		}

		if i+1 >= len(args) {
			out = append(out, zap.Any(key, nil))
			break
		}

		switch value := args[i+1].(type) {
		case error:
			out = append(out, zap.NamedError(key, value))
		case time.Duration:
			out = append(out, zap.Duration(key, value))
		case time.Time:
			out = append(out, zap.Time(key, value))
		default:
			out = append(out, zap.Any(key, value))
		}
	}

	return out
}
