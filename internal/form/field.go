package form

// Widget names how a field is rendered
type Widget string

const (
	WidgetFile     Widget = "file"
	WidgetSelect   Widget = "select"
	WidgetHidden   Widget = "hidden"
	WidgetCheckbox Widget = "checkbox"
)

// Field is the render schema of one form field
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Widget   Widget   `json:"widget"`
	Required bool     `json:"required"`
	Choices  []Choice `json:"choices,omitempty"`
	Value    string   `json:"value,omitempty"`
}
