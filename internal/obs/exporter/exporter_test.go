package exporter

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sampleMetrics() *metricdata.ResourceMetrics {
	attrs := attribute.NewSet(attribute.String("porter.form", "import"))
	return &metricdata.ResourceMetrics{
		ScopeMetrics: []metricdata.ScopeMetrics{{
			Metrics: []metricdata.Metrics{
				{
					Name: "porter.form.submissions",
					Data: metricdata.Sum[int64]{
						DataPoints: []metricdata.DataPoint[int64]{{Attributes: attrs, Value: 3}},
					},
				},
				{
					Name: "porter.upload.size",
					Data: metricdata.Histogram[int64]{
						DataPoints: []metricdata.HistogramDataPoint[int64]{{Attributes: attrs, Count: 2, Sum: 2048}},
					},
				},
			},
		}},
	}
}

func TestLogExporter(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e := NewLogExporter(logger, logrus.DebugLevel)
	require.NoError(t, e.Export(context.Background(), sampleMetrics()))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "porter.form.submissions", entries[0].Data["metric_name"])
	assert.Equal(t, int64(3), entries[0].Data["value"])
	assert.Equal(t, "import", entries[0].Data["porter.form"])
	assert.Equal(t, "histogram", entries[1].Data["metric_type"])
	assert.Equal(t, uint64(2), entries[1].Data["count"])
}

func TestLogExporterSkipsDisabledLevel(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	e := NewLogExporter(logger, logrus.DebugLevel)
	require.NoError(t, e.Export(context.Background(), sampleMetrics()))
	assert.Empty(t, hook.AllEntries())
}

type failingExporter struct {
	*LogExporter
	err error
}

func (f failingExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return f.err }

func TestMultiExporterContinuesPastFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	boom := errors.New("collector down")
	m := NewMultiExporter(
		failingExporter{LogExporter: NewLogExporter(logger, logrus.DebugLevel), err: boom},
		NewLogExporter(logger, logrus.DebugLevel),
	)

	err := m.Export(context.Background(), sampleMetrics())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, hook.AllEntries(), 2, "second exporter still ran")

	assert.NoError(t, m.ForceFlush(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, metricdata.CumulativeTemporality, m.Temporality(metric.InstrumentKindCounter))
	assert.NoError(t, NewMultiExporter().Export(context.Background(), sampleMetrics()), "no exporters is a no-op")
}
