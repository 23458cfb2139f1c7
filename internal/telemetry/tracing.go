package telemetry

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer installs a global OTLP/HTTP tracer provider and returns a tracer
// for the service together with the provider's shutdown func. attrs are added
// to the service resource.
func InitTracer(ctx context.Context, endpoint, serviceName, version string, attrs ...attribute.KeyValue) (trace.Tracer, func(context.Context) error, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing OTEL endpoint: %w", err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(u.Host)}
	if u.Scheme != "https" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(NewResource(serviceName, version, attrs...)),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer(serviceName), tp.Shutdown, nil
}

// NewResource describes the service; serviceName and version take precedence
// over attrs with the same keys.
func NewResource(serviceName, version string, attrs ...attribute.KeyValue) *resource.Resource {
	kvs := make([]attribute.KeyValue, 0, len(attrs)+2)
	kvs = append(kvs, attrs...)
	kvs = append(kvs, semconv.ServiceName(serviceName), semconv.ServiceVersion(version))
	return resource.NewWithAttributes(semconv.SchemaURL, kvs...)
}

// Tracer returns t, or the named tracer of the global provider when t is nil.
func Tracer(t trace.Tracer, name string) trace.Tracer {
	if t != nil {
		return t
	}
	return otel.Tracer(name)
}
