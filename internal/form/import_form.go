package form

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin/binding"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// ImportData is the raw submission of an ImportForm
type ImportData struct {
	ImportFile  *multipart.FileHeader `form:"import_file" binding:"required"`
	InputFormat string                `form:"input_format" binding:"required"`
}

// ImportForm collects an uploaded file and the format to read it with
type ImportForm struct {
	Data   ImportData
	Errors Errors

	bindErr     error
	formats     []dataformat.Format
	inputFormat ChoiceField
	selected    dataformat.Format
}

// NewImportForm creates an import form offering formats, in order
func NewImportForm(formats []dataformat.Format) *ImportForm {
	return &ImportForm{
		Errors:  Errors{},
		formats: formats,
		inputFormat: ChoiceField{
			Name:     "input_format",
			Label:    T(MsgLabelFormat),
			Choices:  FormatChoices(formats),
			Required: true,
		},
	}
}

// Choices returns the input_format choices
func (f *ImportForm) Choices() []Choice {
	return f.inputFormat.Choices
}

// Bind reads a multipart request and validates it
func (f *ImportForm) Bind(req *http.Request) bool {
	f.Data = ImportData{}
	f.Errors = Errors{}
	f.selected = nil
	if f.bindErr = bind(req, &f.Data, binding.FormMultipart, f.Errors); f.bindErr != nil {
		return false
	}
	return f.validate()
}

// TooLarge reports whether the last Bind stopped at the request body size limit
func (f *ImportForm) TooLarge() bool {
	return IsTooLarge(f.bindErr)
}

// Validate checks Data as already populated by the caller
func (f *ImportForm) Validate() bool {
	f.Errors = Errors{}
	f.bindErr = nil
	if f.Data.ImportFile == nil {
		f.Errors.Add("import_file", T(MsgRequired))
	}
	if f.Data.InputFormat == "" {
		f.Errors.Add("input_format", T(MsgRequired))
	}
	return f.validate()
}

func (f *ImportForm) validate() bool {
	f.selected = nil
	if !f.Errors.Has("input_format") {
		value, msg := f.inputFormat.Clean(f.Data.InputFormat)
		if msg != "" {
			f.Errors.Add("input_format", msg)
		} else if format, err := ResolveFormat(f.formats, value); err != nil {
			f.Errors.Add("input_format", T(MsgInvalidChoice, value))
		} else {
			f.selected = format
		}
	}
	return f.Errors.Empty()
}

// Format returns the selected descriptor, nil until the form is valid
func (f *ImportForm) Format() dataformat.Format {
	if !f.Errors.Empty() {
		return nil
	}
	return f.selected
}

// Fields returns the render schema
func (f *ImportForm) Fields() []Field {
	return []Field{
		{Name: "import_file", Label: T(MsgLabelImportFile), Widget: WidgetFile, Required: true},
		f.inputFormat.Field(),
	}
}
