package otel

import (
	"time"

	"github.com/tingly-dev/tingly-porter/internal/config"
)

// Exporter names accepted by Config.Exporter
const (
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config holds the configuration for the OTel meter setup.
type Config struct {
	// Enabled enables or disables metric collection
	Enabled bool

	// ServiceName is reported as the service.name resource attribute
	ServiceName string

	// Exporter selects the primary exporter: stdout, otlp-http or otlp-grpc
	Exporter string

	// Endpoint is the OTLP collector host:port
	Endpoint string

	// Insecure disables TLS for OTLP exporters
	Insecure bool

	// LogSummaries also writes every export to logrus at debug level
	LogSummaries bool

	// ExportInterval is the time between exports. Default: 10s
	ExportInterval time.Duration

	// ExportTimeout is the timeout for each export. Default: 30s
	ExportTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		ServiceName:    "tingly-porter",
		Exporter:       ExporterStdout,
		LogSummaries:   true,
		ExportInterval: 10 * time.Second,
		ExportTimeout:  30 * time.Second,
	}
}

// FromMetricsConfig maps the file config onto a meter Config
func FromMetricsConfig(mc config.MetricsConfig) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = mc.Enabled
	if mc.Exporter != "" {
		cfg.Exporter = mc.Exporter
	}
	cfg.Endpoint = mc.Endpoint
	cfg.Insecure = mc.Insecure
	if mc.ExportInterval > 0 {
		cfg.ExportInterval = mc.ExportInterval
	}
	return cfg
}
