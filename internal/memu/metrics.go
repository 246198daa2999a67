package memu

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Charpup/openclaw-memu-skill/internal/memu"

// serviceMetrics holds the OpenTelemetry instruments for the service.
// A nil receiver disables all recording, so construction failures
// degrade to no metrics instead of no service.
type serviceMetrics struct {
	memorizeTotal   metric.Int64Counter
	memorizeSkipped metric.Int64Counter
	retrieveTotal   metric.Int64Counter
	cacheHits       metric.Int64Counter
	retrieveSeconds metric.Float64Histogram
}

func newServiceMetrics() *serviceMetrics {
	meter := otel.Meter(instrumentationName)
	m := &serviceMetrics{}

	var err error
	m.memorizeTotal, err = meter.Int64Counter(
		"memu.memorize.total",
		metric.WithDescription("Total memorize calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil
	}
	m.memorizeSkipped, err = meter.Int64Counter(
		"memu.memorize.skipped",
		metric.WithDescription("Auto-mode memorize calls skipped by the trigger engine"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil
	}
	m.retrieveTotal, err = meter.Int64Counter(
		"memu.retrieve.total",
		metric.WithDescription("Total retrieve calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil
	}
	m.cacheHits, err = meter.Int64Counter(
		"memu.retrieve.cache_hits",
		metric.WithDescription("Retrieve calls served from cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil
	}
	m.retrieveSeconds, err = meter.Float64Histogram(
		"memu.retrieve.duration",
		metric.WithDescription("Retrieve latency including embedding and search"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil
	}
	return m
}

func (m *serviceMetrics) recordMemorize(ctx context.Context, category string, stored bool) {
	if m == nil {
		return
	}
	m.memorizeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("stored", stored),
	))
	if !stored {
		m.memorizeSkipped.Add(ctx, 1)
	}
}

func (m *serviceMetrics) recordRetrieve(ctx context.Context, seconds float64, cacheHit bool) {
	if m == nil {
		return
	}
	m.retrieveTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
	if cacheHit {
		m.cacheHits.Add(ctx, 1)
	}
	m.retrieveSeconds.Record(ctx, seconds)
}
