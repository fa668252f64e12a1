package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestContextHandler_AddsOperationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithOperationID(context.Background(), "op-123")
	log.InfoContext(ctx, "hello")

	record := decode(t, &buf)
	assert.Equal(t, "op-123", record["operation_id"])
	assert.NotContains(t, record, "trace_id")
}

func TestContextHandler_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside span")
	span.End()

	record := decode(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.NotContains(t, record, "operation_id")
}

func TestContextHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).
		With("component", "store").
		WithGroup("req")

	log.InfoContext(WithOperationID(context.Background(), "op-9"), "grouped", "id", 7)

	record := decode(t, &buf)
	assert.Equal(t, "store", record["component"])
	group, ok := record["req"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), group["id"])
	assert.Equal(t, "op-9", group["operation_id"])
}

func TestOperationID_Missing(t *testing.T) {
	id, ok := OperationID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}
