package persist

import (
	"context"
	"sync"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Memory keeps encoded payloads in process memory.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ Persister = (*Memory)(nil)

// NewMemory returns an empty in-memory persister.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) (*schema.FormData, error) {
	m.mu.Lock()
	payload, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(payload)
}

func (m *Memory) Save(_ context.Context, key string, data *schema.FormData) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
