package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Upstream names used as the "upstream" attribute
const (
	UpstreamGeocoding  = "geocoding"
	UpstreamGeneration = "generation"
)

// Metrics holds the service counters. A nil *Metrics records nothing.
type Metrics struct {
	messagesCreated    metric.Int64Counter
	messagesPurged     metric.Int64Counter
	summariesGenerated metric.Int64Counter
	upstreamFailures   metric.Int64Counter
}

// NewMetrics registers the counters on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.messagesCreated, err = meter.Int64Counter("messages_created",
		metric.WithDescription("Messages posted")); err != nil {
		return nil, err
	}
	if m.messagesPurged, err = meter.Int64Counter("messages_purged",
		metric.WithDescription("Messages deleted by the age sweep")); err != nil {
		return nil, err
	}
	if m.summariesGenerated, err = meter.Int64Counter("summaries_generated",
		metric.WithDescription("Location summaries generated and stored")); err != nil {
		return nil, err
	}
	if m.upstreamFailures, err = meter.Int64Counter("upstream_failures",
		metric.WithDescription("Failed calls to external APIs")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) MessageCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.messagesCreated.Add(ctx, 1)
}

func (m *Metrics) MessagesPurged(ctx context.Context, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.messagesPurged.Add(ctx, n)
}

func (m *Metrics) SummaryGenerated(ctx context.Context) {
	if m == nil {
		return
	}
	m.summariesGenerated.Add(ctx, 1)
}

func (m *Metrics) UpstreamFailure(ctx context.Context, upstream string) {
	if m == nil {
		return
	}
	m.upstreamFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("upstream", upstream)))
}
