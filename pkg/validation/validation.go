// Package validation implements the per-field rule checks applied when a form
// is submitted. Checks run in a fixed order and stop at the first failure, so a
// field reports at most one message at a time.
package validation

import (
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Messages returned by Validate.
const (
	MsgRequired      = "This field is required"
	MsgInvalidFormat = "Invalid format"
)

var patterns sync.Map // pattern source -> *regexp.Regexp or error

// Validate checks value against rules and returns the first failing rule's
// message, or "" when the value passes.
//
// Order: required, pattern, string length, numeric bounds. Empty values
// (null, "", false) only ever fail the required check.
func Validate(value schema.Value, rules schema.Rules) string {
	if value.IsEmpty() {
		if rules.Required {
			return MsgRequired
		}
		return ""
	}

	if rules.Pattern != "" {
		re, err := compile(rules.Pattern)
		if err != nil || !re.MatchString(value.String()) {
			return MsgInvalidFormat
		}
	}

	if s, ok := value.Str(); ok {
		length := utf8.RuneCountInString(s)
		if rules.MinLength != nil && *rules.MinLength > 0 && length < *rules.MinLength {
			return fmt.Sprintf("Minimum length is %d characters", *rules.MinLength)
		}
		if rules.MaxLength != nil && *rules.MaxLength > 0 && length > *rules.MaxLength {
			return fmt.Sprintf("Maximum length is %d characters", *rules.MaxLength)
		}
	}

	if n, ok := value.Numeric(); ok {
		if rules.Min != nil && n < *rules.Min {
			return "Value must be at least " + schema.FormatNumber(*rules.Min)
		}
		if rules.Max != nil && n > *rules.Max {
			return "Value must be at most " + schema.FormatNumber(*rules.Max)
		}
	}

	return ""
}

// Field validates value against the field's merged rule set.
func Field(field schema.Field, value schema.Value) string {
	return Validate(value, field.EffectiveRules())
}

// Compile returns the cached regular expression for a pattern source.
func Compile(pattern string) (*regexp.Regexp, error) {
	return compile(pattern)
}

func compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(pattern); ok {
		switch v := cached.(type) {
		case *regexp.Regexp:
			return v, nil
		case error:
			return nil, v
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		err = fmt.Errorf("validation: compile pattern %q: %w", pattern, err)
		patterns.Store(pattern, err)
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}
