package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/carlosmiguelsoto/einstein"

var (
	logger atomic.Pointer[slog.Logger]
	meter  = otel.Meter(instrumentationName)
	tracer = otel.Tracer(instrumentationName)
)

func init() {
	UseTextLogger(os.Stderr, slog.LevelWarn)
}

// UseTextLogger sends logs to w, dropping everything below level.
func UseTextLogger(w io.Writer, level slog.Level) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// UseOTelLogger routes logs through the global OpenTelemetry logger provider.
func UseOTelLogger() {
	logger.Store(otelslog.NewLogger(instrumentationName))
}

func Logger() *slog.Logger {
	return logger.Load()
}

func Log(content string, level slog.Level, args ...any) {
	logger.Load().Log(context.Background(), level, content, args...)
}

func LogContext(ctx context.Context, content string, level slog.Level, args ...any) {
	logger.Load().Log(ctx, level, content, args...)
}

func InitializeCounter(name, description, unit string) (metric.Int64Counter, error) {
	counter, err := meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit))
	if err != nil {
		Log("Failed to create metric: "+err.Error(), slog.LevelError)
		return nil, err
	}
	return counter, nil
}

func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func UpdateSpanValue(ctx context.Context, key string, value string) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(key, value))
}
