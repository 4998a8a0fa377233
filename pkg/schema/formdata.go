package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FormData holds the values entered so far, keyed by field id. Keys keep the
// order in which they were first written so previews list entries the way the
// user filled them in. The zero value is ready to use.
type FormData struct {
	keys   []string
	values map[string]Value
}

// NewFormData returns an empty FormData.
func NewFormData() *FormData {
	return &FormData{values: make(map[string]Value)}
}

// Len reports the number of stored keys.
func (d *FormData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Get returns the stored value. Missing keys report the null value and false.
func (d *FormData) Get(id string) (Value, bool) {
	if d == nil || d.values == nil {
		return Null(), false
	}
	v, ok := d.values[id]
	return v, ok
}

// Value returns the stored value or the null value when the key is absent.
func (d *FormData) Value(id string) Value {
	v, _ := d.Get(id)
	return v
}

// Set writes value under id. Overwriting keeps the original position.
func (d *FormData) Set(id string, value Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, exists := d.values[id]; !exists {
		d.keys = append(d.keys, id)
	}
	d.values[id] = value
}

// Delete removes id.
func (d *FormData) Delete(id string) {
	if d == nil || d.values == nil {
		return
	}
	if _, ok := d.values[id]; !ok {
		return
	}
	delete(d.values, id)
	for i, key := range d.keys {
		if key == id {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clear removes every key.
func (d *FormData) Clear() {
	d.keys = nil
	d.values = make(map[string]Value)
}

// Keys returns the ids in insertion order.
func (d *FormData) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Clone returns an independent copy.
func (d *FormData) Clone() *FormData {
	out := NewFormData()
	if d == nil {
		return out
	}
	for _, key := range d.keys {
		out.Set(key, d.values[key])
	}
	return out
}

// Map returns the values as plain Go scalars.
func (d *FormData) Map() map[string]any {
	out := make(map[string]any, d.Len())
	if d == nil {
		return out
	}
	for _, key := range d.keys {
		out[key] = d.values[key].Interface()
	}
	return out
}

// Equal reports whether both hold the same keys in the same order with
// strictly equal values.
func (d *FormData) Equal(other *FormData) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, key := range d.Keys() {
		if other.keys[i] != key {
			return false
		}
		if !d.values[key].Equal(other.values[key]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the data as a JSON object in insertion order.
func (d *FormData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d != nil {
		for i, key := range d.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			raw, err := d.values[key].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (d *FormData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: decode form data: %w", err)
	}
	if tok == nil {
		d.Clear()
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("schema: form data must be a JSON object")
	}

	fresh := NewFormData()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: decode form data key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("schema: form data key must be a string")
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("schema: decode form data %q: %w", key, err)
		}
		value, err := ValueOf(raw)
		if err != nil {
			return fmt.Errorf("schema: form data %q: %w", key, err)
		}
		fresh.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: decode form data: %w", err)
	}

	*d = *fresh
	return nil
}
