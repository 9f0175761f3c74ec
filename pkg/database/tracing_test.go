package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		tp.Shutdown(context.Background()) //nolint:errcheck
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func setupTracedRedis(t *testing.T, threshold time.Duration, logger *slog.Logger) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := RedisConfig{Addr: mr.Addr(), SlowThreshold: threshold}
	client, err := NewRedisClient(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("new redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]string {
	attrs := make(map[string]string)
	for _, a := range s.Attributes() {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	return attrs
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, RedisConfig{Addr: "127.0.0.1:1"}, nil)
	if err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestTracingHook_CommandSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	_, client := setupTracedRedis(t, 0, nil)
	exporter.Reset()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "redis.set" {
		t.Errorf("span name = %q, want %q", span.Name(), "redis.set")
	}
	attrs := spanAttrs(span)
	if attrs["db.system"] != "redis" {
		t.Errorf("db.system = %q, want redis", attrs["db.system"])
	}
	if attrs["db.operation"] != "set" {
		t.Errorf("db.operation = %q, want set", attrs["db.operation"])
	}
	if span.Status().Code != codes.Unset {
		t.Errorf("span status = %v, want Unset", span.Status().Code)
	}
}

func TestTracingHook_MissingKeyIsNotAnError(t *testing.T) {
	exporter := setupTestTracer(t)
	_, client := setupTracedRedis(t, 0, nil)
	exporter.Reset()

	err := client.Get(context.Background(), "absent").Err()
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("err = %v, want redis.Nil", err)
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("span status = %v, want Unset", spans[0].Status().Code)
	}
}

func TestTracingHook_CommandError(t *testing.T) {
	exporter := setupTestTracer(t)
	_, client := setupTracedRedis(t, 0, nil)

	ctx := context.Background()
	if err := client.Set(ctx, "s", "text", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	exporter.Reset()

	if err := client.HGet(ctx, "s", "f").Err(); err == nil {
		t.Fatal("expected WRONGTYPE error")
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected error event to be recorded on span")
	}
}

func TestTracingHook_PipelineSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	_, client := setupTracedRedis(t, 0, nil)
	exporter.Reset()

	ctx := context.Background()
	pipe := client.TxPipeline()
	pipe.HSet(ctx, "session:1", "carts", "{}")
	pipe.Expire(ctx, "session:1", time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		t.Fatalf("exec: %v", err)
	}

	spans := exporter.GetSpans().Snapshots()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "redis.pipeline" {
		t.Errorf("span name = %q, want redis.pipeline", spans[0].Name())
	}
	op := spanAttrs(spans[0])["db.operation"]
	if !strings.Contains(op, "hset") || !strings.Contains(op, "expire") {
		t.Errorf("db.operation = %q, want hset and expire", op)
	}
}

func TestTracingHook_SlowCommandLogged(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	_, client := setupTracedRedis(t, time.Nanosecond, logger)
	buf.Reset()

	if err := client.Set(context.Background(), "k", "secret-value", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "slow redis command") {
		t.Errorf("expected slow command log, got: %s", out)
	}
	if strings.Contains(out, "secret-value") {
		t.Errorf("command arguments must not be logged, got: %s", out)
	}
}

func TestTracingHook_FastCommandNotLogged(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	_, client := setupTracedRedis(t, time.Hour, logger)

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}

	if strings.Contains(buf.String(), "slow redis command") {
		t.Error("did not expect slow command log for fast command")
	}
}
