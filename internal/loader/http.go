package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDocumentSize caps how much of a response body is read.
const maxDocumentSize = 4 << 20

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration, headers map[string]string) ([]byte, error) {
	if client == nil {
		return nil, errors.New("loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, err
	}
	return data, nil
}
