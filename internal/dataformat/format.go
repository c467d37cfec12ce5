package dataformat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when a format name has no descriptor
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format describes one file format offered by the admin. It carries no codec.
type Format interface {
	// Name is the stable key used in configuration (e.g. "csv")
	Name() string
	// Title is the human readable label shown in format choices
	Title() string
	// Extension is the file extension without the leading dot
	Extension() string
}

// StreamingCapable is implemented by formats that can be written row by row
// when exporting large datasets.
type StreamingCapable interface {
	SupportsStreamingExport() bool
}

const (
	// Base64Prefix marks a Base64 envelope around JSONL content
	Base64Prefix = "TGB64"
	// CurrentVersion is the envelope version written after the prefix
	CurrentVersion = "1.0"
)

type descriptor struct {
	name      string
	title     string
	extension string
	streaming bool
}

func (d descriptor) Name() string      { return d.name }
func (d descriptor) Title() string     { return d.title }
func (d descriptor) Extension() string { return d.extension }

// SupportsStreamingExport reports whether rows can be emitted one at a time
func (d descriptor) SupportsStreamingExport() bool { return d.streaming }

// Built-in descriptors
var (
	CSV    Format = descriptor{name: "csv", title: "CSV", extension: "csv", streaming: true}
	TSV    Format = descriptor{name: "tsv", title: "TSV", extension: "tsv", streaming: true}
	JSON   Format = descriptor{name: "json", title: "JSON", extension: "json"}
	JSONL  Format = descriptor{name: "jsonl", title: "JSON Lines", extension: "jsonl", streaming: true}
	YAML   Format = descriptor{name: "yaml", title: "YAML", extension: "yaml"}
	XLSX   Format = descriptor{name: "xlsx", title: "Excel (XLSX)", extension: "xlsx"}
	Base64 Format = descriptor{name: "base64", title: "Base64 (TGB64)", extension: "txt"}
)

var builtin = []Format{CSV, TSV, JSON, JSONL, YAML, XLSX, Base64}

// All returns every built-in descriptor in display order
func All() []Format {
	out := make([]Format, len(builtin))
	copy(out, builtin)
	return out
}

// New returns the descriptor registered under name
func New(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "yml":
		key = "yaml"
	case "ndjson":
		key = "jsonl"
	}
	for _, f := range builtin {
		if f.Name() == key {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Parse resolves an ordered list of names. Duplicates are rejected.
func Parse(names []string) ([]Format, error) {
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := New(name)
		if err != nil {
			return nil, err
		}
		if Contains(formats, f) {
			return nil, fmt.Errorf("duplicate format: %s", f.Name())
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Names returns the Name of each format
func Names(formats []Format) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name()
	}
	return names
}

// IsStreamingCapable reports whether f declares streaming export support
func IsStreamingCapable(f Format) bool {
	sc, ok := f.(StreamingCapable)
	return ok && sc.SupportsStreamingExport()
}

// StreamingSubset returns the formats that declare streaming support, in order
func StreamingSubset(formats []Format) []Format {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		if IsStreamingCapable(f) {
			out = append(out, f)
		}
	}
	return out
}

// Same reports whether a and b describe the same format
func Same(a, b Format) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// Contains reports whether f is a member of formats
func Contains(formats []Format, f Format) bool {
	for _, candidate := range formats {
		if Same(candidate, f) {
			return true
		}
	}
	return false
}
