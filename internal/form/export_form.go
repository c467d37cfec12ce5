package form

import (
	"net/http"

	"github.com/gin-gonic/gin/binding"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// ExportData is the raw submission of an ExportForm
type ExportData struct {
	IsStreamingExport Checkbox `form:"is_streaming_export"`
	FileFormat        string   `form:"file_format" binding:"required"`
}

// ExportForm collects an output format and whether to export as a stream.
// Streaming is only accepted for formats listed in streamingFormats.
type ExportForm struct {
	Data   ExportData
	Errors Errors

	formats          []dataformat.Format
	streamingFormats []dataformat.Format
	fileFormat       ChoiceField
	selected         dataformat.Format
}

// NewExportForm creates an export form offering formats, in order
func NewExportForm(formats, streamingFormats []dataformat.Format) *ExportForm {
	return &ExportForm{
		Errors:           Errors{},
		formats:          formats,
		streamingFormats: streamingFormats,
		fileFormat: ChoiceField{
			Name:     "file_format",
			Label:    T(MsgLabelFormat),
			Choices:  FormatChoices(formats),
			Required: true,
		},
	}
}

// Choices returns the file_format choices
func (f *ExportForm) Choices() []Choice {
	return f.fileFormat.Choices
}

// StreamingFormats returns the formats allowed with is_streaming_export
func (f *ExportForm) StreamingFormats() []dataformat.Format {
	return f.streamingFormats
}

// Bind reads a form request and validates it
func (f *ExportForm) Bind(req *http.Request) bool {
	f.Data = ExportData{}
	f.Errors = Errors{}
	if err := bind(req, &f.Data, binding.Form, f.Errors); err != nil {
		return false
	}
	return f.validate()
}

// Validate checks Data as already populated by the caller
func (f *ExportForm) Validate() bool {
	f.Errors = Errors{}
	if f.Data.FileFormat == "" {
		f.Errors.Add("file_format", T(MsgRequired))
	}
	return f.validate()
}

func (f *ExportForm) validate() bool {
	f.selected = nil
	if !f.Errors.Has("file_format") {
		value, msg := f.fileFormat.Clean(f.Data.FileFormat)
		if msg != "" {
			f.Errors.Add("file_format", msg)
		} else if format, err := ResolveFormat(f.formats, value); err != nil {
			f.Errors.Add("file_format", T(MsgInvalidChoice, value))
		} else {
			f.selected = format
		}
	}
	f.clean()
	return f.Errors.Empty()
}

// clean runs the cross-field rule once file_format resolved on its own
func (f *ExportForm) clean() {
	if f.selected == nil || !f.Data.IsStreamingExport.Bool() {
		return
	}
	if !dataformat.Contains(f.streamingFormats, f.selected) {
		f.Errors.Add("is_streaming_export", T(MsgStreamingExport, f.selected.Extension()))
	}
}

// Format returns the selected descriptor, nil until the form is valid
func (f *ExportForm) Format() dataformat.Format {
	if !f.Errors.Empty() {
		return nil
	}
	return f.selected
}

// Streaming reports whether a streaming export was requested
func (f *ExportForm) Streaming() bool {
	return f.Data.IsStreamingExport.Bool()
}

// Fields returns the render schema
func (f *ExportForm) Fields() []Field {
	return []Field{
		{Name: "is_streaming_export", Label: T(MsgLabelStreaming), Widget: WidgetCheckbox},
		f.fileFormat.Field(),
	}
}
