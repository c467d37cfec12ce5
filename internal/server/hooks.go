package server

import (
	"context"
	"io"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// ImportRequest is handed to the import engine once an import is confirmed
type ImportRequest struct {
	Resource         string
	Format           dataformat.Format
	OriginalFileName string
	// StagedFileName is the tmpstore name, removed after a successful import
	StagedFileName string
	File           io.Reader
}

// ImportResult summarizes what the import engine did
type ImportResult struct {
	New     int    `json:"new"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Message string `json:"message,omitempty"`
}

// ImportHook runs the actual import. The server owns opening and removing
// the staged file.
type ImportHook func(ctx context.Context, req *ImportRequest) (*ImportResult, error)

// ExportRequest is handed to the export engine for a validated export form
type ExportRequest struct {
	Resource  string
	Format    dataformat.Format
	Streaming bool
	// IDs are the selected rows of a bulk action; empty means the whole queryset
	IDs []string
	// Writer is the response body. Headers are already set.
	Writer io.Writer
}

// ExportHook serializes the requested rows in the requested format
type ExportHook func(ctx context.Context, req *ExportRequest) error
