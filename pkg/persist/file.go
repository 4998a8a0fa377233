package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// File stores one JSON document per key inside a directory.
type File struct {
	dir string
}

var _ Persister = (*File)(nil)

// NewFile creates dir if needed and returns a file persister rooted there.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("persist: file directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *File) Load(ctx context.Context, key string) (*schema.FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", key, err)
	}
	return Decode(payload)
}

func (f *File) Save(ctx context.Context, key string, data *schema.FormData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	target := f.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("persist: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("persist: replace %s: %w", key, err)
	}
	return nil
}

func (f *File) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("persist: remove %s: %w", key, err)
	}
	return nil
}
