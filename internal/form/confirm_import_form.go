package form

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/binding"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// ConfirmImportData carries the first import step forward in hidden fields
type ConfirmImportData struct {
	ImportFileName   string `form:"import_file_name" binding:"required"`
	OriginalFileName string `form:"original_file_name" binding:"required"`
	InputFormat      string `form:"input_format" binding:"required"`
}

// ConfirmImportForm is the second step of an import. Its values come back from
// the client unauthenticated, so the stored file name is reduced to a base name.
type ConfirmImportForm struct {
	Data   ConfirmImportData
	Errors Errors

	formats  []dataformat.Format
	selected dataformat.Format
}

// ConfirmOption configures a ConfirmImportForm
type ConfirmOption func(*ConfirmImportForm)

// WithFormats makes input_format resolve against formats
func WithFormats(formats []dataformat.Format) ConfirmOption {
	return func(f *ConfirmImportForm) {
		f.formats = formats
	}
}

// NewConfirmImportForm creates the confirm step form
func NewConfirmImportForm(opts ...ConfirmOption) *ConfirmImportForm {
	f := &ConfirmImportForm{Errors: Errors{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initial pre-fills the hidden values for rendering
func (f *ConfirmImportForm) Initial(importFileName, originalFileName, inputFormat string) *ConfirmImportForm {
	f.Data = ConfirmImportData{
		ImportFileName:   importFileName,
		OriginalFileName: originalFileName,
		InputFormat:      inputFormat,
	}
	return f
}

// Bind reads a form request and validates it
func (f *ConfirmImportForm) Bind(req *http.Request) bool {
	f.Data = ConfirmImportData{}
	f.Errors = Errors{}
	if err := bind(req, &f.Data, binding.Form, f.Errors); err != nil {
		return false
	}
	return f.validate()
}

// Validate checks Data as already populated by the caller
func (f *ConfirmImportForm) Validate() bool {
	f.Errors = Errors{}
	return f.validate()
}

func (f *ConfirmImportForm) validate() bool {
	f.selected = nil
	// Surrounding whitespace is dropped before any other check
	for _, hidden := range []struct {
		name  string
		value *string
	}{
		{"import_file_name", &f.Data.ImportFileName},
		{"original_file_name", &f.Data.OriginalFileName},
		{"input_format", &f.Data.InputFormat},
	} {
		*hidden.value = strings.TrimSpace(*hidden.value)
		if *hidden.value == "" && !f.Errors.Has(hidden.name) {
			f.Errors.Add(hidden.name, T(MsgRequired))
		}
	}
	if !f.Errors.Has("import_file_name") {
		name := BaseName(f.Data.ImportFileName)
		switch name {
		case "", ".", "..":
			f.Errors.Add("import_file_name", T(MsgInvalidFileName))
		default:
			f.Data.ImportFileName = name
		}
	}
	if f.formats != nil && !f.Errors.Has("input_format") {
		format, err := ResolveFormat(f.formats, f.Data.InputFormat)
		if err != nil {
			f.Errors.Add("input_format", T(MsgInvalidChoice, f.Data.InputFormat))
		} else {
			f.selected = format
		}
	}
	return f.Errors.Empty()
}

// Format returns the resolved descriptor when the form was built WithFormats
func (f *ConfirmImportForm) Format() dataformat.Format {
	if !f.Errors.Empty() {
		return nil
	}
	return f.selected
}

// Fields returns the render schema with the current hidden values
func (f *ConfirmImportForm) Fields() []Field {
	return []Field{
		{Name: "import_file_name", Label: T(MsgLabelHiddenFile), Widget: WidgetHidden, Required: true, Value: f.Data.ImportFileName},
		{Name: "original_file_name", Label: T(MsgLabelOriginalFile), Widget: WidgetHidden, Required: true, Value: f.Data.OriginalFileName},
		{Name: "input_format", Label: T(MsgLabelHiddenFormat), Widget: WidgetHidden, Required: true, Value: f.Data.InputFormat},
	}
}

// BaseName drops every directory component of name, for both / and \ separators
func BaseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
