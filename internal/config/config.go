package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// Config is the on-disk configuration of the porter admin
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Formats       FormatsConfig       `yaml:"formats" json:"formats"`
	Upload        UploadConfig        `yaml:"upload" json:"upload"`
	Log           LogConfig           `yaml:"log" json:"log"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	SubmissionLog SubmissionLogConfig `yaml:"submission_log" json:"submission_log"`

	// ConfigFile is the path the config was loaded from, empty for defaults
	ConfigFile string `yaml:"-" json:"-"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// Resource names accepted in /api/v1/resources/:resource routes; empty allows any
	Resources []string `yaml:"resources" json:"resources"`
}

// FormatsConfig lists the format names offered by each form, in display order
type FormatsConfig struct {
	Import []string `yaml:"import" json:"import"`
	Export []string `yaml:"export" json:"export"`
	// Streaming restricts large dataset export; nil means every streaming capable export format
	Streaming []string `yaml:"streaming" json:"streaming"`
	// Action feeds the bulk action picker; nil means the export list
	Action []string `yaml:"action" json:"action"`
}

// UploadConfig controls staging of uploaded import files
type UploadConfig struct {
	TmpDir          string        `yaml:"tmp_dir" json:"tmp_dir"`
	MaxSizeMB       int           `yaml:"max_size_mb" json:"max_size_mb"`
	AllowedPatterns []string      `yaml:"allowed_patterns" json:"allowed_patterns"`
	MaxAge          time.Duration `yaml:"max_age" json:"max_age"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// MetricsConfig controls the OpenTelemetry meter setup
type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Exporter       string        `yaml:"exporter" json:"exporter"` // stdout, otlp-http, otlp-grpc
	Endpoint       string        `yaml:"endpoint" json:"endpoint"`
	Insecure       bool          `yaml:"insecure" json:"insecure"`
	ExportInterval time.Duration `yaml:"export_interval" json:"export_interval"`
}

// SubmissionLogConfig controls the rejected submission log
type SubmissionLogConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	File      string `yaml:"file" json:"file"`
	Filter    string `yaml:"filter" json:"filter"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
}

// Formats is the resolved descriptor lists of a Config
type Formats struct {
	Import    []dataformat.Format
	Export    []dataformat.Format
	Streaming []dataformat.Format
	Action    []dataformat.Format
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 12590,
		},
		Formats: FormatsConfig{
			Import: []string{"csv", "tsv", "json", "jsonl", "yaml", "xlsx"},
			Export: []string{"csv", "tsv", "json", "jsonl", "yaml", "xlsx"},
		},
		Upload: UploadConfig{
			MaxSizeMB: 32,
			MaxAge:    24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 10,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Exporter:       "stdout",
			ExportInterval: 10 * time.Second,
		},
		SubmissionLog: SubmissionLogConfig{
			Filter:    "StatusCode >= 400 && Path matches '^/api/'",
			MaxSizeMB: 10,
		},
	}
}

// Load reads a JSON or YAML config file on top of the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
		}
	}

	cfg.ConfigFile = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the config at once
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Upload.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("upload.max_size_mb must not be negative"))
	}
	if _, err := c.ResolveFormats(); err != nil {
		errs = append(errs, err)
	}
	if c.SubmissionLog.Enabled && c.SubmissionLog.File == "" {
		errs = append(errs, fmt.Errorf("submission_log.file is required when submission_log is enabled"))
	}
	switch c.Metrics.Exporter {
	case "", "stdout", "otlp-http", "otlp-grpc":
	default:
		errs = append(errs, fmt.Errorf("metrics.exporter %q is not one of stdout, otlp-http, otlp-grpc", c.Metrics.Exporter))
	}
	return errors.Join(errs...)
}

// ResolveFormats turns the configured names into descriptors
func (c *Config) ResolveFormats() (*Formats, error) {
	var (
		f   Formats
		err error
	)
	if f.Import, err = dataformat.Parse(c.Formats.Import); err != nil {
		return nil, fmt.Errorf("formats.import: %w", err)
	}
	if f.Export, err = dataformat.Parse(c.Formats.Export); err != nil {
		return nil, fmt.Errorf("formats.export: %w", err)
	}

	if c.Formats.Streaming == nil {
		f.Streaming = dataformat.StreamingSubset(f.Export)
	} else {
		if f.Streaming, err = dataformat.Parse(c.Formats.Streaming); err != nil {
			return nil, fmt.Errorf("formats.streaming: %w", err)
		}
		for _, s := range f.Streaming {
			if !dataformat.Contains(f.Export, s) {
				return nil, fmt.Errorf("formats.streaming: %s is not an export format", s.Name())
			}
		}
	}

	if c.Formats.Action == nil {
		f.Action = f.Export
	} else if f.Action, err = dataformat.Parse(c.Formats.Action); err != nil {
		return nil, fmt.Errorf("formats.action: %w", err)
	}
	return &f, nil
}

// Address returns host:port for the listener
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResourceAllowed reports whether name may be addressed in resource routes
func (c *Config) ResourceAllowed(name string) bool {
	if len(c.Server.Resources) == 0 {
		return name != ""
	}
	for _, r := range c.Server.Resources {
		if r == name {
			return true
		}
	}
	return false
}
