package server

import (
	"github.com/tingly-dev/tingly-porter/internal/dataformat"
	"github.com/tingly-dev/tingly-porter/internal/form"
	"github.com/tingly-dev/tingly-porter/internal/obs"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Errors  form.Errors `json:"errors,omitempty"`
}

// FormSchemaResponse describes a form for rendering
type FormSchemaResponse struct {
	Success bool         `json:"success"`
	Data    []form.Field `json:"data"`
}

// UploadData carries the confirm step of an import
type UploadData struct {
	// Confirm holds the hidden field values to post back to the confirm endpoint
	Confirm  map[string]string `json:"confirm"`
	Fields   []form.Field      `json:"fields"`
	Format   FormatInfo        `json:"format"`
	Size     int64             `json:"size"`
	Warnings []string          `json:"warnings,omitempty"`
}

// UploadResponse is returned once an upload is staged
type UploadResponse struct {
	Success bool       `json:"success"`
	Data    UploadData `json:"data"`
}

// ImportResponse is returned once an import is confirmed
type ImportResponse struct {
	Success bool          `json:"success"`
	Data    *ImportResult `json:"data"`
}

// ExportSelection is returned when no export engine is configured
type ExportSelection struct {
	Resource  string     `json:"resource"`
	Format    FormatInfo `json:"format"`
	Streaming bool       `json:"streaming"`
	IDs       []string   `json:"ids,omitempty"`
	FileName  string     `json:"file_name"`
}

// ExportSelectionResponse wraps ExportSelection
type ExportSelectionResponse struct {
	Success bool            `json:"success"`
	Data    ExportSelection `json:"data"`
}

// FormatInfo describes one format descriptor
type FormatInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Extension string `json:"extension"`
	Streaming bool   `json:"streaming"`
}

// FormatsData lists the format sets currently offered
type FormatsData struct {
	Import    []FormatInfo `json:"import"`
	Export    []FormatInfo `json:"export"`
	Streaming []FormatInfo `json:"streaming"`
	Action    []FormatInfo `json:"action"`
}

// FormatsResponse wraps FormatsData
type FormatsResponse struct {
	Success bool        `json:"success"`
	Data    FormatsData `json:"data"`
}

// LogsResponse represents the API response for logs
type LogsResponse struct {
	Success bool        `json:"success"`
	Total   int         `json:"total"`
	Logs    []obs.Entry `json:"logs"`
}

func formatInfo(f dataformat.Format) FormatInfo {
	if f == nil {
		return FormatInfo{}
	}
	return FormatInfo{
		Name:      f.Name(),
		Title:     f.Title(),
		Extension: f.Extension(),
		Streaming: dataformat.IsStreamingCapable(f),
	}
}

func formatInfos(formats []dataformat.Format) []FormatInfo {
	infos := make([]FormatInfo, 0, len(formats))
	for _, f := range formats {
		infos = append(infos, formatInfo(f))
	}
	return infos
}
