package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	// KindNull is the zero Value. It is what missing keys and JSON null decode to.
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "null"
	}
}

// Value is a form value: a string, a number, or a boolean. Values are
// comparable with == and Equal performs the same strict check, so a string
// "true" never equals the boolean true.
type Value struct {
	kind Kind
	str  string
	num  float64
	flag bool
}

// Null returns the empty value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps n.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// ValueOf converts a decoded JSON/YAML scalar into a Value. Unsupported types
// return an error so schema documents are rejected at the boundary.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("schema: invalid number %q: %w", v, err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("schema: unsupported value type %T", raw)
	}
}

// Kind reports the populated member.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the empty union.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload and whether the value is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Equal is strict equality: both kind and payload must match. NaN never
// equals anything, including itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	default:
		return true
	}
}

// IsEmpty reports whether the value counts as "not provided": null, the
// empty string, or false.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindBool:
		return !v.flag
	default:
		return false
	}
}

// String renders the value the way it is displayed and pattern-matched:
// numbers use the shortest representation, booleans are "true"/"false" and
// null is the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Numeric returns the numeric reading of the value. Numbers are returned as is
// and strings qualify when they parse fully (surrounding spaces allowed) to a
// finite number. Everything else reports false.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num) && !math.IsInf(v.num, 0)
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// Interface returns the payload as a plain Go value (string, float64, bool or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	default:
		return nil
	}
}

// MarshalJSON encodes the payload as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("schema: decode value: %w", err)
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML decodes a YAML scalar through the same rules as JSON.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FormatNumber prints n without trailing zeros ("50", "2.5").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseNumber reads a finite number from raw, ignoring surrounding spaces.
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
