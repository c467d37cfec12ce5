package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// MultiExporter sends each batch of submission metrics to every exporter in turn.
// A failing exporter does not stop the others; all failures are joined.
type MultiExporter struct {
	exporters []metric.Exporter
	mu        sync.Mutex
}

// NewMultiExporter creates a MultiExporter. The first exporter decides temporality
// and aggregation, the rest receive the same data.
func NewMultiExporter(exporters ...metric.Exporter) *MultiExporter {
	return &MultiExporter{
		exporters: exporters,
	}
}

func (m *MultiExporter) Temporality(kind metric.InstrumentKind) metricdata.Temporality {
	if len(m.exporters) > 0 {
		return m.exporters[0].Temporality(kind)
	}
	return metric.DefaultTemporalitySelector(kind)
}

func (m *MultiExporter) Aggregation(kind metric.InstrumentKind) metric.Aggregation {
	if len(m.exporters) > 0 {
		return m.exporters[0].Aggregation(kind)
	}
	return metric.DefaultAggregationSelector(kind)
}

func (m *MultiExporter) Export(ctx context.Context, res *metricdata.ResourceMetrics) error {
	return m.each("export", func(e metric.Exporter) error { return e.Export(ctx, res) })
}

func (m *MultiExporter) ForceFlush(ctx context.Context) error {
	return m.each("flush", func(e metric.Exporter) error { return e.ForceFlush(ctx) })
}

func (m *MultiExporter) Shutdown(ctx context.Context) error {
	return m.each("shutdown", func(e metric.Exporter) error { return e.Shutdown(ctx) })
}

func (m *MultiExporter) each(op string, fn func(metric.Exporter) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, e := range m.exporters {
		if err := fn(e); err != nil {
			errs = append(errs, fmt.Errorf("%s %T: %w", op, e, err))
		}
	}
	return errors.Join(errs...)
}
