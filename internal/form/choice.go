package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// Choice is one (value, label) option of a select field
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Placeholder is prepended when the user has to pick between several formats
func Placeholder() Choice {
	return Choice{Value: "", Label: T(MsgPlaceholderChoice)}
}

// FormatChoices builds ordinal choices for formats. When more than one format is
// offered a placeholder comes first so the user must select explicitly.
func FormatChoices(formats []dataformat.Format) []Choice {
	choices := make([]Choice, 0, len(formats)+1)
	for i, f := range formats {
		choices = append(choices, Choice{Value: strconv.Itoa(i), Label: f.Title()})
	}
	if len(formats) > 1 {
		choices = append([]Choice{Placeholder()}, choices...)
	}
	return choices
}

// ActionFormatChoices adapts descriptors to the paired shape taken by
// NewExportActionForm. Values are ordinals, as in FormatChoices.
func ActionFormatChoices(formats []dataformat.Format) []Choice {
	choices := make([]Choice, 0, len(formats))
	for i, f := range formats {
		choices = append(choices, Choice{Value: strconv.Itoa(i), Label: f.Title()})
	}
	return choices
}

// ResolveFormat maps a submitted ordinal back to its descriptor. Non-numeric,
// negative and out of range values are errors.
func ResolveFormat(formats []dataformat.Format, value string) (dataformat.Format, error) {
	value = strings.TrimSpace(value)
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("format index %q is not a number", value)
	}
	if i < 0 || i >= len(formats) {
		return nil, fmt.Errorf("format index %d out of range [0, %d)", i, len(formats))
	}
	return formats[i], nil
}

// ChoiceField validates a submitted value against a fixed set of choices
type ChoiceField struct {
	Name     string
	Label    string
	Choices  []Choice
	Required bool
}

// Clean returns the accepted value or a user-facing message
func (f ChoiceField) Clean(value string) (string, string) {
	if value == "" {
		if f.Required {
			return "", T(MsgRequired)
		}
		return "", ""
	}
	for _, c := range f.Choices {
		if c.Value == value {
			return value, ""
		}
	}
	return "", T(MsgInvalidChoice, value)
}

// Field returns the render schema of the field
func (f ChoiceField) Field() Field {
	return Field{
		Name:     f.Name,
		Label:    f.Label,
		Widget:   WidgetSelect,
		Required: f.Required,
		Choices:  f.Choices,
	}
}
