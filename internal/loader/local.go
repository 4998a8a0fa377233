package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loader: %s is a directory", path)
	}
	if info.Size() > maxDocumentSize {
		return nil, fmt.Errorf("loader: %s exceeds %d bytes", path, maxDocumentSize)
	}
	return os.ReadFile(abs)
}

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("loader: fs path is required")
	}
	if files == nil {
		return nil, errors.New("loader: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(files, name)
}
