package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/ghuser/catalog/services/catalog"

type counters struct {
	created metric.Int64Counter
	cleaned metric.Int64Counter
}

// newCounters registers the catalog counters on the global meter provider.
// A registration failure falls back to no-op counters.
func newCounters() counters {
	meter := otel.Meter(meterName)
	nop := noop.NewMeterProvider().Meter(meterName)

	created, err := meter.Int64Counter("catalog.entities.created",
		metric.WithDescription("Catalog entities created, by kind."))
	if err != nil {
		created, _ = nop.Int64Counter("catalog.entities.created")
	}
	cleaned, err := meter.Int64Counter("catalog.images.cleaned",
		metric.WithDescription("Orphaned images deleted by the janitor."))
	if err != nil {
		cleaned, _ = nop.Int64Counter("catalog.images.cleaned")
	}
	return counters{created: created, cleaned: cleaned}
}

// The zero counters value records nothing.
func (c counters) entityCreated(ctx context.Context, kind string) {
	if c.created != nil {
		c.created.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (c counters) imagesCleaned(ctx context.Context, n int) {
	if c.cleaned != nil {
		c.cleaned.Add(ctx, int64(n))
	}
}
