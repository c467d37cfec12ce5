package form

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sirupsen/logrus"
)

// Message keys
const (
	MsgRequired          = "form_required"
	MsgInvalidChoice     = "invalid_choice"
	MsgStreamingExport   = "streaming_unsupported"
	MsgInvalidFileName   = "invalid_file_name"
	MsgNotMultipart      = "not_multipart"
	MsgInvalidValue      = "invalid_value"
	MsgLabelImportFile   = "label_import_file"
	MsgLabelFormat       = "label_format"
	MsgLabelStreaming    = "label_streaming"
	MsgPlaceholderChoice = "placeholder_choice"
	MsgLabelHiddenFile   = "label_import_file_name"
	MsgLabelOriginalFile = "label_original_file_name"
	MsgLabelHiddenFormat = "label_input_format"
	MsgFileNotAllowed    = "file_not_allowed"
	MsgFileTooLarge      = "file_too_large"
	MsgFormatMismatch    = "format_mismatch"
	MsgStagedFileMissing = "staged_file_missing"
	MsgFormatChanged     = "format_changed"
)

var catalog = map[string]string{
	MsgRequired:          "This field is required.",
	MsgInvalidChoice:     "Select a valid choice. {0} is not one of the available choices.",
	MsgStreamingExport:   "{0} extension does not support exporting large datasets.",
	MsgInvalidFileName:   "Invalid file name.",
	MsgNotMultipart:      "The upload must be sent as multipart/form-data.",
	MsgInvalidValue:      "Enter a valid value.",
	MsgLabelImportFile:   "File to import",
	MsgLabelFormat:       "Format",
	MsgLabelStreaming:    "Large datasets export",
	MsgPlaceholderChoice: "---",
	MsgLabelHiddenFile:   "Import file name",
	MsgLabelOriginalFile: "Original file name",
	MsgLabelHiddenFormat: "Input format",
	MsgFileNotAllowed:    "Files of this type are not accepted.",
	MsgFileTooLarge:      "The file is larger than {0} MB.",
	MsgFormatMismatch:    "{0} was selected but the file looks like {1}.",
	MsgStagedFileMissing: "The uploaded file has expired. Upload it again.",
	MsgFormatChanged:     "The available formats changed since the upload. Upload the file again.",
}

var (
	setupOnce  sync.Once
	translator ut.Translator
)

// setup wires the gin validator engine to report fields by their form names and
// registers the message catalog.
func setup() {
	setupOnce.Do(func() {
		uni := ut.New(en.New())
		translator, _ = uni.GetTranslator("en")

		for key, text := range catalog {
			if err := translator.Add(key, text, true); err != nil {
				logrus.Errorf("form: failed to register message %q: %v", key, err)
			}
		}

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logrus.Warn("form: gin validator engine is not go-playground/validator, messages will be untranslated")
			return
		}
		v.RegisterTagNameFunc(formTagName)
		if err := entranslations.RegisterDefaultTranslations(v, translator); err != nil {
			logrus.Errorf("form: failed to register validator translations: %v", err)
		}
		err := v.RegisterTranslation("required", translator,
			func(trans ut.Translator) error { return trans.Add("required", catalog[MsgRequired], true) },
			func(trans ut.Translator, fe validator.FieldError) string { return T(MsgRequired) },
		)
		if err != nil {
			logrus.Errorf("form: failed to register required translation: %v", err)
		}
	})
}

func formTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// T renders a catalog message with positional params
func T(key string, params ...string) string {
	setup()
	msg, err := translator.T(key, params...)
	if err != nil {
		if text, ok := catalog[key]; ok {
			return text
		}
		return key
	}
	return msg
}
