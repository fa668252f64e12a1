package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/productstore/internal/product/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/abgdnv/productstore/internal/product/store"

const (
	opCreate  = "create"
	opReadAll = "read_all"
	opRead    = "read"
	opUpdate  = "update"
	opDelete  = "delete"
)

const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

type instruments struct {
	tracer     trace.Tracer
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// newInstruments binds to the global tracer and meter providers at construction time.
func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)
	operations, err := meter.Int64Counter("product_store_operations",
		metric.WithDescription("Total number of product store operations by outcome"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_store_operations counter: %v", err))
	}
	duration, err := meter.Float64Histogram("product_store_operation_duration",
		metric.WithDescription("Duration of product store operations"),
		metric.WithUnit("ms"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_store_operation_duration histogram: %v", err))
	}
	return &instruments{
		tracer:     otel.Tracer(instrumentationName),
		operations: operations,
		duration:   duration,
	}
}

// begin starts a span for op. The returned func must be called exactly once with the operation result.
func (i *instruments) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "ProductStore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system.name", "postgresql"),
			attribute.String("db.collection.name", "products"),
		))
	return ctx, func(err error) {
		result := outcome(err)
		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", result),
		)
		i.operations.Add(ctx, 1, attrs)
		i.duration.Record(ctx, float64(time.Since(start).Nanoseconds())/1e6, attrs)
		span.SetAttributes(attribute.String("outcome", result))
		if result == outcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, perrors.ErrInvalidItem):
		return outcomeInvalid
	case errors.Is(err, perrors.ErrProductNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
