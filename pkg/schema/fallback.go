package schema

// EmailPattern matches a loose "local@domain.tld" address.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

// Fallback returns the built-in schema used whenever the configured source
// fails. Each call returns a fresh copy.
func Fallback() []Field {
	return []Field{
		{
			ID:          "fullName",
			Type:        FieldTypeText,
			Label:       "Full Name",
			Placeholder: "John Doe",
			Required:    true,
			Validation:  &Rules{MinLength: Int(2), MaxLength: Int(50)},
		},
		{
			ID:          "email",
			Type:        FieldTypeText,
			Label:       "Email Address",
			Placeholder: "john@example.com",
			Required:    true,
			Validation:  &Rules{Pattern: EmailPattern},
		},
		{
			ID:       "role",
			Type:     FieldTypeSelect,
			Label:    "Job Role",
			Required: true,
			Options:  []string{"Developer", "Designer", "Product Manager", "Lawyer"},
		},
		{
			ID:          "specialization",
			Type:        FieldTypeText,
			Label:       "Law Specialization",
			Placeholder: "e.g. Corporate, Criminal",
			Required:    true,
			DependsOn:   &Dependency{Field: "role", Value: String("Lawyer")},
		},
		{
			ID:          "experience",
			Type:        FieldTypeNumber,
			Label:       "Years of Experience",
			Placeholder: "0",
			Validation:  &Rules{Min: Float(0), Max: Float(50)},
		},
		{
			ID:       "availableStart",
			Type:     FieldTypeDate,
			Label:    "Available Start Date",
			Required: true,
		},
		{
			ID:       "terms",
			Type:     FieldTypeCheckbox,
			Label:    "I accept the terms and conditions",
			Required: true,
		},
	}
}
