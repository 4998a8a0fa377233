package tui

// OutputFormat controls how Render serializes a page.
type OutputFormat string

const (
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
	// OutputFormatJSON emits the page view model as JSON.
	OutputFormatJSON OutputFormat = "json"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the Render serialization.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
