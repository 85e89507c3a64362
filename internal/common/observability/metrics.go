package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the OpenTelemetry meter and tracer for generation calls.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	callCounter    otelmetric.Int64Counter
	callLatency    otelmetric.Float64Histogram
}

// New wires the Prometheus exporter into the default registry and installs
// the providers globally.
func New(serviceName string) (*Observability, error) {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

func NewWithRegisterer(serviceName string, reg prometheus.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	otel.SetMeterProvider(meterProvider)
	otel.SetTracerProvider(tracerProvider)

	o, err := build(meterProvider.Meter(serviceName), tracerProvider.Tracer(serviceName))
	if err != nil {
		return nil, err
	}
	o.meterProvider = meterProvider
	o.tracerProvider = tracerProvider
	return o, nil
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	o, _ := build(metricnoop.NewMeterProvider().Meter("noop"), tracenoop.NewTracerProvider().Tracer("noop"))
	return o
}

func build(meter otelmetric.Meter, tracer trace.Tracer) (*Observability, error) {
	callCounter, err := meter.Int64Counter(
		"llm.calls",
		otelmetric.WithDescription("Generation calls recorded in the call log"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call counter: %w", err)
	}

	callLatency, err := meter.Float64Histogram(
		"llm.call.duration",
		otelmetric.WithDescription("Wall-clock latency of a generation call including provider retries"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call latency histogram: %w", err)
	}

	return &Observability{
		tracer:      tracer,
		callCounter: callCounter,
		callLatency: callLatency,
	}, nil
}

// Tracer returns the tracer used for provider attempt spans.
func (o *Observability) Tracer() trace.Tracer {
	return o.tracer
}

// RecordCall records one call-log outcome.
func (o *Observability) RecordCall(ctx context.Context, operation, code string, latency time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("code", code),
	)
	o.callCounter.Add(ctx, 1, attrs)
	o.callLatency.Record(ctx, float64(latency.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
