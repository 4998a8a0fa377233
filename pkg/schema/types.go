package schema

// FieldType enumerates the widgets a schema field can render as.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeSelect, FieldTypeCheckbox, FieldTypeDate:
		return true
	default:
		return false
	}
}

// Rules are the optional per-field validation constraints. A nil pointer (or
// empty pattern) means the rule is not checked.
type Rules struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Dependency makes a field visible only while FormData[Field] equals Value.
type Dependency struct {
	Field string `json:"field" yaml:"field"`
	Value Value  `json:"value" yaml:"value"`
}

// Field is a single schema entry.
type Field struct {
	ID          string      `json:"id" yaml:"id"`
	Type        FieldType   `json:"type" yaml:"type"`
	Label       string      `json:"label" yaml:"label"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Validation  *Rules      `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"`
	DependsOn   *Dependency `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// EffectiveRules folds the field's own required flag into its validation
// rules. Either source marking the field required makes it required.
func (f Field) EffectiveRules() Rules {
	var rules Rules
	if f.Validation != nil {
		rules = *f.Validation
	}
	rules.Required = rules.Required || f.Required
	return rules
}

// Clone returns a deep copy of f. Rules, the dependency and options are not
// shared with the original.
func (f Field) Clone() Field {
	out := f
	if f.Validation != nil {
		rules := *f.Validation
		rules.Min = cloneFloat(f.Validation.Min)
		rules.Max = cloneFloat(f.Validation.Max)
		rules.MinLength = cloneInt(f.Validation.MinLength)
		rules.MaxLength = cloneInt(f.Validation.MaxLength)
		out.Validation = &rules
	}
	if f.DependsOn != nil {
		dep := *f.DependsOn
		out.DependsOn = &dep
	}
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	return out
}

// CloneFields deep copies every field. A nil slice stays nil.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}

// HasOption reports whether value is one of the field's declared options.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// FormErrors maps field ids to a human readable message. A missing key means
// the field has no error.
type FormErrors map[string]string

// Clone returns an independent copy.
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for id, msg := range e {
		out[id] = msg
	}
	return out
}

// Float returns a pointer to v, for building Rules literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building Rules literals.
func Int(v int) *int { return &v }

// Find returns the field with the given id.
func Find(fields []Field, id string) (Field, bool) {
	for _, field := range fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}
