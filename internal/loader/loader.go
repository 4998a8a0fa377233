// Package loader reads raw schema documents from disk, an fs.FS, or HTTP.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Options configures a Loader.
type Options struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
	Headers        map[string]string
}

// Loader fetches documents by delegating to file, fs.FS, or HTTP strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	headers   map[string]string
}

// New constructs a Loader from options. HTTP is enabled when a client is
// supplied or AllowHTTP is set.
func New(options Options) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTP:
		httpClient = &http.Client{Timeout: timeout}
	}

	headers := make(map[string]string, len(options.Headers))
	for k, v := range options.Headers {
		headers[k] = v
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		headers:   headers,
	}
}

// Load fetches the document at loc.
func (l *Loader) Load(ctx context.Context, loc schema.Location) (schema.Document, error) {
	if loc == nil {
		return schema.Document{}, errors.New("loader: location is nil")
	}

	var (
		data []byte
		err  error
	)

	switch loc.Kind() {
	case schema.LocationKindFile:
		data, err = loadFile(ctx, loc.Path())
	case schema.LocationKindFS:
		data, err = loadFromFS(ctx, l.fs, loc.Path())
	case schema.LocationKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, loc.Path(), l.timeout, l.headers)
	default:
		err = errors.New("loader: unsupported location kind")
	}
	if err != nil {
		return schema.Document{}, err
	}

	return schema.NewDocument(loc, data)
}
