package render

// RenderOptions describe per-request data that renderers can use without
// touching the store.
type RenderOptions struct {
	// Title is shown above the form. Empty uses the renderer default.
	Title string
	// BasePath prefixes every form action so the app can be mounted under a
	// sub-route.
	BasePath string
	// Partial renders only the widget list instead of the full document.
	Partial bool
}
