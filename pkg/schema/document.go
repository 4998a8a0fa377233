package schema

import "errors"

// Document wraps a raw schema payload and its origin.
type Document struct {
	location Location
	raw      []byte
}

// NewDocument constructs a Document, rejecting empty payloads.
func NewDocument(loc Location, raw []byte) (Document, error) {
	if loc == nil {
		return Document{}, errors.New("schema: location is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{location: loc, raw: clone}, nil
}

// Location returns the origin of the document.
func (d Document) Location() Location {
	return d.location
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Format guesses the encoding from the location path.
func (d Document) Format() Format {
	if d.location == nil {
		return FormatJSON
	}
	return FormatFromPath(d.location.Path())
}

// Fields decodes and checks the document.
func (d Document) Fields() ([]Field, error) {
	return Decode(d.raw, d.Format())
}
