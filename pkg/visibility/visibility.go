// Package visibility decides whether a schema field is currently shown. The
// same decision gates both rendering and validation, so both sides must ask
// the same Evaluator.
package visibility

import "github.com/goliatone/go-dynform/pkg/schema"

// Evaluator determines whether a field should be visible given the current
// form values.
type Evaluator interface {
	Visible(field schema.Field, data *schema.FormData) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field schema.Field, data *schema.FormData) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field schema.Field, data *schema.FormData) bool {
	return fn(field, data)
}

// DependsOn is the default evaluator. A field without a dependency is always
// visible; otherwise the referenced field's stored value must strictly equal
// the configured value. Missing keys compare as null, so a dependency on null
// is satisfied by an untouched field. Each field is evaluated on its own:
// a field whose target is itself hidden is not suppressed transitively.
var DependsOn Evaluator = EvaluatorFunc(func(field schema.Field, data *schema.FormData) bool {
	dep := field.DependsOn
	if dep == nil {
		return true
	}
	return data.Value(dep.Field).Equal(dep.Value)
})

// Filter returns the visible fields in schema order.
func Filter(eval Evaluator, fields []schema.Field, data *schema.FormData) []schema.Field {
	if eval == nil {
		eval = DependsOn
	}
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if eval.Visible(field, data) {
			out = append(out, field)
		}
	}
	return out
}
