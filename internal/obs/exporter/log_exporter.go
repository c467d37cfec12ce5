package exporter

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// LogExporter writes counter and histogram summaries to a logrus logger.
type LogExporter struct {
	logger *logrus.Logger
	level  logrus.Level
}

// NewLogExporter creates a LogExporter; a nil logger means the standard one.
func NewLogExporter(logger *logrus.Logger, level logrus.Level) *LogExporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogExporter{logger: logger, level: level}
}

// Temporality returns the Temporality to use for an instrument kind.
func (e *LogExporter) Temporality(kind metric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

// Aggregation returns the Aggregation to use for an instrument kind.
func (e *LogExporter) Aggregation(kind metric.InstrumentKind) metric.Aggregation {
	return metric.DefaultAggregationSelector(kind)
}

// Export logs one line per data point.
func (e *LogExporter) Export(ctx context.Context, res *metricdata.ResourceMetrics) error {
	if !e.logger.IsLevelEnabled(e.level) {
		return nil
	}
	for _, scope := range res.ScopeMetrics {
		for _, m := range scope.Metrics {
			e.exportMetric(m)
		}
	}
	return nil
}

func (e *LogExporter) exportMetric(m metricdata.Metrics) {
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			e.entry(m.Name, "sum", dp.Attributes).
				WithField("value", dp.Value).
				Log(e.level, "metric")
		}
	case metricdata.Histogram[int64]:
		for _, dp := range data.DataPoints {
			e.entry(m.Name, "histogram", dp.Attributes).
				WithField("count", dp.Count).
				WithField("sum", dp.Sum).
				Log(e.level, "metric")
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			e.entry(m.Name, "histogram", dp.Attributes).
				WithField("count", dp.Count).
				WithField("sum", dp.Sum).
				Log(e.level, "metric")
		}
	}
}

func (e *LogExporter) entry(name, kind string, attrs attribute.Set) *logrus.Entry {
	fields := logrus.Fields{
		"metric_name": name,
		"metric_type": kind,
	}
	iter := attrs.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	return e.logger.WithFields(fields)
}

// ForceFlush is a no-op.
func (e *LogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown is a no-op.
func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}
