package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxLoggerKey struct{}

// WithLogger returns a copy of ctx carrying logger. A nil ctx starts from Background.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// LoggerFromContext returns the logger stored by WithLogger, or the process logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return Logger()
}

func LogDebug(ctx context.Context, msg string, fields ...zap.Field) {
	logAt(ctx, zapcore.DebugLevel, msg, fields)
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	logAt(ctx, zapcore.InfoLevel, msg, fields)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	logAt(ctx, zapcore.WarnLevel, msg, fields)
}

// LogError logs at error level and appends err as the "error" field when non-nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logAt(ctx, zapcore.ErrorLevel, msg, fields)
}

func logAt(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	LoggerFromContext(ctx).WithOptions(zap.AddCallerSkip(2)).Log(level, msg, fields...)
}
