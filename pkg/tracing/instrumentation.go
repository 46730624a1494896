package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys shared across packages
const (
	DBSystemKey     = attribute.Key("db.system")
	DBOperationKey  = attribute.Key("db.operation")
	UserIDKey       = attribute.Key("user.id")
	LatitudeKey     = attribute.Key("location.latitude")
	LongitudeKey    = attribute.Key("location.longitude")
	RadiusKmKey     = attribute.Key("search.radius_km")
	ResultCountKey  = attribute.Key("result.count")
	DegradationsKey = attribute.Key("result.degradations")
)

// TraceDBQuery wraps a read against the candidate store with a client span.
func TraceDBQuery(ctx context.Context, tracerName, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("db.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(DBSystemKey.String("postgresql"), DBOperationKey.String(operation))
	return finish(span, fn(ctx))
}

// TraceBusinessLogic wraps an internal step with a span carrying attrs.
func TraceBusinessLogic(ctx context.Context, tracerName, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, operation,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return finish(span, fn(ctx))
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// LocationAttributes describes a search origin and radius.
func LocationAttributes(latitude, longitude, radiusKm float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		LatitudeKey.Float64(latitude),
		LongitudeKey.Float64(longitude),
		RadiusKmKey.Float64(radiusKm),
	}
}
