// Package tui renders composer pages as plain text and runs interactive
// terminal sessions that fill a form field by field.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/composer"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/submit"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for terminals and drives Fill sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver and text output.
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatPrettyText,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = newSurveyDriver()
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Render writes a text (or JSON) view of page.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.outputFormat == OutputFormatJSON {
		out, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode page: %w", err)
		}
		return out, nil
	}

	var buf bytes.Buffer
	if opts.Title != "" {
		fmt.Fprintf(&buf, "%s\n\n", opts.Title)
	}
	if page.Receipt != "" {
		fmt.Fprintf(&buf, "%s (%s)\n\n", render.MessageSubmitted, page.Receipt)
	}
	switch page.State {
	case render.PageLoading, render.PageFailed:
		fmt.Fprintln(&buf, page.Message)
		return buf.Bytes(), nil
	}

	for _, w := range page.Widgets {
		fmt.Fprintf(&buf, "%s: %s\n", label(w), displayValue(w))
		if w.Invalid {
			fmt.Fprintf(&buf, "  %s%s\n", r.theme.ErrorPrefix, w.Error)
		}
	}
	if page.ShowPreview {
		fmt.Fprintln(&buf, "\nReview Submission")
		for _, row := range page.Preview {
			fmt.Fprintf(&buf, "  %s: %s\n", row.Label, row.Value)
		}
	}
	return buf.Bytes(), nil
}

// Fill runs an interactive session against c until the form is submitted
// or discarded. Invalid fields are asked again after each submit attempt.
func (r *Renderer) Fill(ctx context.Context, c *composer.Composer) (submit.Receipt, error) {
	page := c.View()
	if page.State == render.PageLoading {
		c.Mount(ctx)
		page = c.View()
	}
	if page.State == render.PageFailed {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+page.Message)
		return submit.Receipt{}, ErrLoadFailed
	}

	var only map[string]bool
	for {
		if err := r.collect(ctx, c, only); err != nil {
			return submit.Receipt{}, err
		}

		if ok, _ := c.Submit(); !ok {
			only = map[string]bool{}
			for _, w := range c.View().Widgets {
				if w.Invalid {
					only[w.ID] = true
					if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, w.Label, w.Error)); err != nil {
						return submit.Receipt{}, err
					}
				}
			}
			continue
		}

		if err := r.showPreview(ctx, c.View()); err != nil {
			return submit.Receipt{}, err
		}
		confirmed, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Confirm & Submit?", Default: true})
		if err != nil {
			return submit.Receipt{}, err
		}
		if confirmed {
			receipt, err := c.Confirm(ctx)
			if err != nil {
				return receipt, err
			}
			_ = r.driver.Info(ctx, fmt.Sprintf("%s%s (%s)", r.theme.InfoPrefix, render.MessageSubmitted, receipt.ID))
			return receipt, nil
		}

		c.Edit()
		edit, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit information?", Default: true})
		if err != nil {
			return submit.Receipt{}, err
		}
		if !edit {
			c.Discard(ctx)
			return submit.Receipt{}, ErrDiscarded
		}
		only = nil
	}
}

// collect prompts every visible field once, in schema order, re-reading the
// page after each answer so newly revealed dependents are asked too. When
// only is non-nil, fields outside it are skipped.
func (r *Renderer) collect(ctx context.Context, c *composer.Composer, only map[string]bool) error {
	asked := map[string]bool{}
	for {
		next, ok := nextWidget(c.View(), asked, only)
		if !ok {
			return nil
		}
		raw, err := r.prompt(ctx, next)
		if err != nil {
			return err
		}
		if err := c.SetInput(ctx, next.ID, raw); err != nil {
			if errors.Is(err, composer.ErrHiddenField) || errors.Is(err, composer.ErrUnknownField) {
				asked[next.ID] = true
				continue
			}
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+render.InputMessage(err)); err != nil {
				return err
			}
			continue
		}
		asked[next.ID] = true
	}
}

func nextWidget(page render.Page, asked, only map[string]bool) (render.Widget, bool) {
	for _, w := range page.Widgets {
		if asked[w.ID] || (only != nil && !only[w.ID]) {
			continue
		}
		return w, true
	}
	return render.Widget{}, false
}

func (r *Renderer) prompt(ctx context.Context, w render.Widget) (string, error) {
	switch w.Type {
	case schema.FieldTypeCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label(w), Default: w.Checked})
		if err != nil || !checked {
			return "", err
		}
		return "on", nil
	case schema.FieldTypeSelect:
		options := make([]string, 0, len(w.Options)+1)
		offset := 0
		if !w.Required {
			options = append(options, noneOption)
			offset = 1
		}
		selected := 0
		for i, opt := range w.Options {
			if opt.Selected {
				selected = i + offset
			}
			options = append(options, opt.Label)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label(w), Options: options, DefaultIndex: selected})
		if err != nil {
			return "", err
		}
		idx -= offset
		if idx < 0 || idx >= len(w.Options) {
			return "", nil
		}
		return w.Options[idx].Value, nil
	default:
		return r.driver.Input(ctx, InputConfig{Message: label(w), Default: w.Value, Help: help(w)})
	}
}

func (r *Renderer) showPreview(ctx context.Context, page render.Page) error {
	if err := r.driver.Info(ctx, "Review Submission"); err != nil {
		return err
	}
	for _, row := range page.Preview {
		if err := r.driver.Info(ctx, fmt.Sprintf("  %s: %s", row.Label, row.Value)); err != nil {
			return err
		}
	}
	return nil
}

func label(w render.Widget) string {
	if w.Required {
		return w.Label + " *"
	}
	return w.Label
}

func displayValue(w render.Widget) string {
	if w.Type == schema.FieldTypeCheckbox {
		if w.Checked {
			return "[x]"
		}
		return "[ ]"
	}
	if w.Value == "" {
		return "-"
	}
	return w.Value
}

func help(w render.Widget) string {
	switch w.Type {
	case schema.FieldTypeDate:
		return "Format: YYYY-MM-DD"
	case schema.FieldTypeNumber:
		if w.Min != nil && w.Max != nil {
			return fmt.Sprintf("A number between %s and %s", schema.FormatNumber(*w.Min), schema.FormatNumber(*w.Max))
		}
		return "A number"
	}
	return w.Placeholder
}
