// Package persist stores FormData between sessions. Only form values are
// persisted; schema, errors and UI flags are always rebuilt at start-up.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// DefaultKey is the storage identifier form values are saved under.
const DefaultKey = "form-storage"

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("persist: no stored form data")

// Persister saves and restores FormData under a storage key.
type Persister interface {
	Load(ctx context.Context, key string) (*schema.FormData, error)
	Save(ctx context.Context, key string, data *schema.FormData) error
	Clear(ctx context.Context, key string) error
}

// envelope is the on-disk shape. The version allows future migrations of the
// stored state without breaking older payloads.
type envelope struct {
	State   state `json:"state"`
	Version int   `json:"version"`
}

type state struct {
	FormData *schema.FormData `json:"formData"`
}

// Encode serialises data into the stored payload format.
func Encode(data *schema.FormData) ([]byte, error) {
	if data == nil {
		data = schema.NewFormData()
	}
	payload, err := json.Marshal(envelope{State: state{FormData: data}})
	if err != nil {
		return nil, fmt.Errorf("persist: encode: %w", err)
	}
	return payload, nil
}

// Decode parses a stored payload.
func Decode(payload []byte) (*schema.FormData, error) {
	env := envelope{State: state{FormData: schema.NewFormData()}}
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("persist: decode: %w", err)
	}
	if env.State.FormData == nil {
		return schema.NewFormData(), nil
	}
	return env.State.FormData, nil
}
