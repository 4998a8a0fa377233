package render

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// DateLayout is the calendar-date representation used by date fields.
const DateLayout = "2006-01-02"

var (
	// ErrNotANumber is returned when a number field receives non-numeric input.
	ErrNotANumber = errors.New("render: input is not a number")
	// ErrUnknownOption is returned when a select receives a value outside its options.
	ErrUnknownOption = errors.New("render: input is not one of the field options")
	// ErrInvalidDate is returned when a date field receives a malformed date.
	ErrInvalidDate = errors.New("render: input is not a YYYY-MM-DD date")
)

// ParseInput coerces raw form input for field into a Value. Empty input on a
// number, select or date field yields the empty string, which validation
// treats as unset. Refused input returns one of the Err* sentinels and should
// be reported through InputMessage without changing the stored value.
func ParseInput(field schema.Field, raw string) (schema.Value, error) {
	switch field.Type {
	case schema.FieldTypeNumber:
		if strings.TrimSpace(raw) == "" {
			return schema.String(""), nil
		}
		n, ok := schema.ParseNumber(raw)
		if !ok {
			return schema.Value{}, ErrNotANumber
		}
		return schema.Number(n), nil
	case schema.FieldTypeSelect:
		if raw == "" {
			return schema.String(""), nil
		}
		if !field.HasOption(raw) {
			return schema.Value{}, ErrUnknownOption
		}
		return schema.String(raw), nil
	case schema.FieldTypeCheckbox:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "true", "1", "yes":
			return schema.Bool(true), nil
		default:
			return schema.Bool(false), nil
		}
	case schema.FieldTypeDate:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return schema.String(""), nil
		}
		if _, err := time.Parse(DateLayout, trimmed); err != nil {
			return schema.Value{}, ErrInvalidDate
		}
		return schema.String(trimmed), nil
	default:
		return schema.String(raw), nil
	}
}

// InputMessage maps a ParseInput error to the inline message shown to the
// user. Unknown errors map to the generic format message.
func InputMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotANumber):
		return "Please enter a number"
	case errors.Is(err, ErrUnknownOption):
		return "Please select one of the listed options"
	case errors.Is(err, ErrInvalidDate):
		return "Please enter a date as YYYY-MM-DD"
	default:
		return "Invalid format"
	}
}
