package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability bridges OTel instruments onto the Prometheus registry that
// the :8080 /metrics endpoint already serves. Per-job telemetry is recorded
// by the broker wrapper once a handler returns.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobsHandled   otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		// Telemetry is not worth refusing to start over.
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobsHandled, _ := meter.Int64Counter(
		"worker.jobs.handled",
		otelmetric.WithDescription("Jobs handled per task type"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"worker.jobs.duration",
		otelmetric.WithDescription("Wall-clock handler duration per task type"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		jobsHandled:   jobsHandled,
		jobDuration:   jobDuration,
	}
}

// RecordHandled counts one handled job and its duration for the task type.
func (o *Observability) RecordHandled(ctx context.Context, taskType string, d time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("task_type", taskType))
	if o.jobsHandled != nil {
		o.jobsHandled.Add(ctx, 1, attrs)
	}
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
