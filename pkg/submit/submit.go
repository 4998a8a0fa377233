// Package submit hands confirmed form data to an external collaborator.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Logger is the logging subset submitters use.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
}

// Receipt identifies a submission.
type Receipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submitter receives the final FormData on confirmation.
type Submitter interface {
	Submit(ctx context.Context, data *schema.FormData) (Receipt, error)
}

// Func adapts a function into a Submitter.
type Func func(ctx context.Context, data *schema.FormData) (Receipt, error)

// Submit delegates to the function.
func (fn Func) Submit(ctx context.Context, data *schema.FormData) (Receipt, error) {
	return fn(ctx, data)
}

func newReceipt() Receipt {
	return Receipt{ID: uuid.NewString(), SubmittedAt: time.Now().UTC()}
}

// Noop logs the submission and does nothing else.
type Noop struct {
	logger Logger
}

var _ Submitter = (*Noop)(nil)

// NewNoop returns a logging-only submitter. A nil logger discards output.
func NewNoop(logger Logger) *Noop {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Noop{logger: logger}
}

func (n *Noop) Submit(_ context.Context, data *schema.FormData) (Receipt, error) {
	receipt := newReceipt()
	n.logger.Info("form submitted", "receipt", receipt.ID, "fields", data.Len())
	return receipt, nil
}

// ErrUnexpectedStatus is wrapped when the endpoint answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("submit: unexpected response status")

// HTTPOption configures an HTTP submitter.
type HTTPOption func(*HTTP)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithHeaders adds request headers (for example an Authorization token).
func WithHeaders(headers map[string]string) HTTPOption {
	return func(h *HTTP) {
		for k, v := range headers {
			h.headers[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) HTTPOption {
	return func(h *HTTP) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// HTTP posts submissions as JSON to an endpoint. The receipt id doubles as
// the Idempotency-Key header.
type HTTP struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
	logger   Logger
}

var _ Submitter = (*HTTP)(nil)

// NewHTTP builds an HTTP submitter for endpoint.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	if endpoint == "" {
		return nil, errors.New("submit: endpoint is required")
	}
	h := &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		headers:  map[string]string{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

type payload struct {
	Receipt
	FormData *schema.FormData `json:"formData"`
}

func (h *HTTP) Submit(ctx context.Context, data *schema.FormData) (Receipt, error) {
	receipt := newReceipt()
	body, err := json.Marshal(payload{Receipt: receipt, FormData: data})
	if err != nil {
		return receipt, fmt.Errorf("submit: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return receipt, fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", receipt.ID)
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return receipt, fmt.Errorf("submit: post %s: %w", h.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return receipt, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	h.logger.Info("form submitted", "receipt", receipt.ID, "endpoint", h.endpoint, "status", resp.StatusCode)
	return receipt, nil
}
