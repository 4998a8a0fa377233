package render

import (
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Option is a select choice.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Widget is the view model for one visible field. Value holds the display
// text for text-like inputs; Checked is used by checkboxes.
type Widget struct {
	ID          string           `json:"id"`
	Type        schema.FieldType `json:"type"`
	InputType   string           `json:"input_type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required"`
	Value       string           `json:"value"`
	Checked     bool             `json:"checked"`
	Options     []Option         `json:"options,omitempty"`
	Invalid     bool             `json:"invalid"`
	Error       string           `json:"error,omitempty"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	MinLength   *int             `json:"min_length,omitempty"`
	MaxLength   *int             `json:"max_length,omitempty"`
}

// BuildWidget derives the widget for field from its current value and error
// message.
func BuildWidget(field schema.Field, value schema.Value, errMsg string) Widget {
	rules := field.EffectiveRules()
	w := Widget{
		ID:          field.ID,
		Type:        field.Type,
		InputType:   inputType(field.Type),
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Required:    rules.Required,
		Invalid:     errMsg != "",
		Error:       errMsg,
		Min:         rules.Min,
		Max:         rules.Max,
		MinLength:   rules.MinLength,
		MaxLength:   rules.MaxLength,
	}

	switch field.Type {
	case schema.FieldTypeCheckbox:
		w.Checked, _ = value.Bool()
	case schema.FieldTypeSelect:
		current, _ := value.Str()
		w.Value = current
		w.Options = make([]Option, 0, len(field.Options))
		for _, opt := range field.Options {
			w.Options = append(w.Options, Option{Value: opt, Label: opt, Selected: opt == current})
		}
	default:
		if !value.IsNull() {
			w.Value = value.String()
		}
	}
	return w
}

func inputType(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeNumber:
		return "number"
	case schema.FieldTypeDate:
		return "date"
	case schema.FieldTypeCheckbox:
		return "checkbox"
	case schema.FieldTypeSelect:
		return "select"
	default:
		return "text"
	}
}
