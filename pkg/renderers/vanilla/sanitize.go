package vanilla

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynform/pkg/render"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// plainText strips any markup from schema-supplied copy. The result is
// unescaped again because templates escape on output.
func plainText(raw string) string {
	if raw == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(raw)))
}

func sanitizeWidget(w render.Widget) render.Widget {
	w.Label = plainText(w.Label)
	w.Placeholder = plainText(w.Placeholder)
	if len(w.Options) > 0 {
		options := make([]render.Option, len(w.Options))
		for i, opt := range w.Options {
			opt.Label = plainText(opt.Label)
			options[i] = opt
		}
		w.Options = options
	}
	return w
}

func sanitizePage(page render.Page) render.Page {
	if len(page.Widgets) > 0 {
		widgets := make([]render.Widget, len(page.Widgets))
		for i, w := range page.Widgets {
			widgets[i] = sanitizeWidget(w)
		}
		page.Widgets = widgets
	}
	if len(page.Preview) > 0 {
		rows := make([]render.PreviewRow, len(page.Preview))
		for i, row := range page.Preview {
			row.Label = plainText(row.Label)
			rows[i] = row
		}
		page.Preview = rows
	}
	return page
}
