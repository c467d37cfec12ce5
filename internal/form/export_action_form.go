package form

import (
	"net/http"

	"github.com/gin-gonic/gin/binding"
)

// ExportActionData is the raw submission of an ExportActionForm
type ExportActionData struct {
	FileFormat string `form:"file_format"`
}

// ExportActionForm is merged into a bulk action toolbar. Its single field is an
// optional format so the action can run with a default when nothing is picked.
type ExportActionForm struct {
	Data   ExportActionData
	Errors Errors

	fileFormat ChoiceField
}

// NewExportActionForm creates an action form over pre-paired choices. Callers
// holding descriptors adapt them with ActionFormatChoices.
func NewExportActionForm(choices []Choice) *ExportActionForm {
	return &ExportActionForm{
		Errors: Errors{},
		fileFormat: ChoiceField{
			Name:    "file_format",
			Label:   T(MsgLabelFormat),
			Choices: choices,
		},
	}
}

// Choices returns the file_format choices
func (f *ExportActionForm) Choices() []Choice {
	return f.fileFormat.Choices
}

// Bind reads a form request and validates it
func (f *ExportActionForm) Bind(req *http.Request) bool {
	f.Data = ExportActionData{}
	f.Errors = Errors{}
	if err := bind(req, &f.Data, binding.Form, f.Errors); err != nil {
		return false
	}
	return f.validate()
}

// Validate checks Data as already populated by the caller
func (f *ExportActionForm) Validate() bool {
	f.Errors = Errors{}
	return f.validate()
}

func (f *ExportActionForm) validate() bool {
	value, msg := f.fileFormat.Clean(f.Data.FileFormat)
	if msg != "" {
		f.Errors.Add("file_format", msg)
	} else {
		f.Data.FileFormat = value
	}
	return f.Errors.Empty()
}

// FileFormat returns the chosen value, "" when the user left it unset
func (f *ExportActionForm) FileFormat() string {
	if !f.Errors.Empty() {
		return ""
	}
	return f.Data.FileFormat
}

// Fields returns the render schema
func (f *ExportActionForm) Fields() []Field {
	return []Field{f.fileFormat.Field()}
}
