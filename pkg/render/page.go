package render

import (
	"github.com/goliatone/go-dynform/pkg/schema"
)

// PageState selects which composer view is shown.
type PageState string

const (
	PageLoading PageState = "loading"
	PageFailed  PageState = "failed"
	PageForm    PageState = "form"
)

// Default copy used by the composer views.
const (
	MessageLoading    = "Loading form configuration..."
	MessageLoadFailed = "Failed to load form schema."
	MessageSubmitted  = "Form successfully submitted!"
)

// PreviewRow is one label/value pair in the confirmation view.
type PreviewRow struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Page is the full composer view model.
type Page struct {
	State       PageState    `json:"state"`
	Message     string       `json:"message,omitempty"`
	Widgets     []Widget     `json:"widgets,omitempty"`
	ShowPreview bool         `json:"show_preview"`
	Preview     []PreviewRow `json:"preview,omitempty"`
	// Focus is the id of the widget to scroll into view after a failed submit.
	Focus string `json:"focus,omitempty"`
	// Receipt is set after a confirmed submission.
	Receipt string `json:"receipt,omitempty"`
}

// PreviewRows lists data in insertion order with humanized ids.
func PreviewRows(data *schema.FormData) []PreviewRow {
	if data == nil {
		return nil
	}
	rows := make([]PreviewRow, 0, data.Len())
	for _, id := range data.Keys() {
		rows = append(rows, PreviewRow{
			ID:    id,
			Label: schema.Humanize(id),
			Value: data.Value(id).String(),
		})
	}
	return rows
}
