package otel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/tingly-dev/tingly-porter/internal/obs/exporter"
)

// MeterSetup holds the meter provider and submission tracker.
type MeterSetup struct {
	meterProvider *sdkmetric.MeterProvider
	tracker       *SubmissionTracker
}

// NewMeterSetup creates a new meter setup with the provided config.
// A disabled config yields a setup whose tracker records nothing.
func NewMeterSetup(ctx context.Context, cfg *Config) (*MeterSetup, error) {
	if cfg == nil || !cfg.Enabled {
		return &MeterSetup{}, nil
	}

	primary, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	exporters := []sdkmetric.Exporter{primary}
	if cfg.LogSummaries {
		exporters = append(exporters, exporter.NewLogExporter(nil, logrus.DebugLevel))
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter.NewMultiExporter(exporters...),
		sdkmetric.WithInterval(cfg.ExportInterval),
		sdkmetric.WithTimeout(cfg.ExportTimeout),
	)

	ms, err := newMeterSetup(ctx, cfg, reader)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(ms.meterProvider)
	logrus.Infof("Metrics enabled: exporter=%s interval=%s", cfg.Exporter, cfg.ExportInterval)
	return ms, nil
}

func newMeterSetup(ctx context.Context, cfg *Config, reader sdkmetric.Reader) (*MeterSetup, error) {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	tracker, err := NewSubmissionTracker(meterProvider.Meter(cfg.ServiceName))
	if err != nil {
		_ = meterProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create submission tracker: %w", err)
	}

	return &MeterSetup{
		meterProvider: meterProvider,
		tracker:       tracker,
	}, nil
}

func newExporter(ctx context.Context, cfg *Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case "", ExporterStdout:
		return stdoutmetric.New()
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", cfg.Exporter)
	}
}

// Tracker returns the submission tracker; nil when metrics are disabled.
func (ms *MeterSetup) Tracker() *SubmissionTracker {
	return ms.tracker
}

// Shutdown flushes and shuts down the meter provider.
func (ms *MeterSetup) Shutdown(ctx context.Context) error {
	if ms.meterProvider == nil {
		return nil
	}
	return ms.meterProvider.Shutdown(ctx)
}
