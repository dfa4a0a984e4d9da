package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Telemetry owns the process-wide OpenTelemetry providers
type Telemetry struct {
	// Metrics are the service counters
	Metrics *Metrics
	// Handler exposes the counters in Prometheus text format
	Handler http.Handler

	stops []func(context.Context) error
}

// Setup installs a meter provider exported through a private Prometheus
// registry. When traceOutput is non-nil spans are also printed to it.
func Setup(serviceName string, traceOutput io.Writer) (*Telemetry, error) {
	t := &Telemetry{}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry), otelprom.WithoutScopeInfo())
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	meters := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(meters)
	t.stops = append(t.stops, meters.Shutdown)
	t.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	if t.Metrics, err = NewMetrics(meters.Meter(serviceName)); err != nil {
		return nil, err
	}

	if traceOutput != nil {
		spans, err := stdouttrace.New(stdouttrace.WithWriter(traceOutput))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		))
		if err != nil {
			return nil, fmt.Errorf("trace resource: %w", err)
		}
		tracer := sdktrace.NewTracerProvider(sdktrace.WithBatcher(spans), sdktrace.WithResource(res))
		otel.SetTracerProvider(tracer)
		t.stops = append(t.stops, tracer.Shutdown)
	}

	return t, nil
}

// Shutdown flushes pending spans and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.stops) - 1; i >= 0; i-- {
		errs = append(errs, t.stops[i](ctx))
	}
	return errors.Join(errs...)
}
