// Package render turns store state into view models and renders them. The
// view models (Widget, Page) are pure functions of a store snapshot; concrete
// output formats live under pkg/renderers.
package render

import (
	"context"
)

// Renderer converts a Page into a byte representation (HTML, plain text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
