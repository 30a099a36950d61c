// Package tui renders pages in a terminal. Text and images are printed, and
// every form is filled in through prompts and submitted through its
// FormInstance.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-uibuilder/pkg/fields"
	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for interactive terminal sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver and JSON output.
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialisation format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Submission is the record of one filled form.
type Submission struct {
	ID      string           `json:"id"`
	Values  map[string]any   `json:"values"`
	Outcome *sandbox.Outcome `json:"outcome,omitempty"`
}

// Render walks the page in order. The returned bytes summarise the
// submissions in the configured output format.
func (r *Renderer) Render(ctx context.Context, page *render.Page, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if page == nil {
		return nil, errors.New("tui: page is nil")
	}

	var submissions []Submission
	for _, node := range page.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if node.Kind != render.KindForm {
			if err := r.driver.Info(ctx, r.describe(node)); err != nil {
				return nil, err
			}
			continue
		}

		form, ok := page.Form(node.ID)
		if !ok {
			continue
		}
		result, err := r.fill(ctx, form)
		if err != nil {
			return nil, fmt.Errorf("tui: form %q: %w", node.ID, err)
		}
		submissions = append(submissions, Submission{ID: form.ID(), Values: form.Values(), Outcome: result.Outcome})
	}
	return r.serialize(submissions)
}

func (r *Renderer) describe(node render.Node) string {
	switch node.Kind {
	case render.KindText:
		switch node.Element {
		case "h1":
			return node.Text + "\n" + strings.Repeat("=", utf8.RuneCountInString(node.Text))
		case "h2":
			return node.Text + "\n" + strings.Repeat("-", utf8.RuneCountInString(node.Text))
		}
		return r.theme.InfoPrefix + node.Text
	case render.KindImage:
		return fmt.Sprintf("%s[image: %s] %s", r.theme.InfoPrefix, node.Attrs["alt"], node.Attrs["src"])
	default:
		return r.theme.ErrorPrefix + node.Text
	}
}

// fill prompts every field, submits, and prompts again for the fields that
// failed validation.
func (r *Renderer) fill(ctx context.Context, form *render.FormInstance) (render.SubmitResult, error) {
	props := form.Props()
	if props.Title != "" {
		if err := r.driver.Info(ctx, props.Title); err != nil {
			return render.SubmitResult{}, err
		}
	}

	pending := props.Fields
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		for _, field := range pending {
			value, err := r.prompt(ctx, form, field)
			if err != nil {
				return render.SubmitResult{}, err
			}
			if err := form.SetValue(field.Name, value); err != nil {
				return render.SubmitResult{}, err
			}
		}

		if err := r.driver.Info(ctx, r.theme.InfoPrefix+render.SubmittingText); err != nil {
			return render.SubmitResult{}, err
		}
		result, err := form.Submit(ctx)
		if err != nil {
			return render.SubmitResult{}, err
		}
		if result.Valid() {
			return result, r.report(ctx, *result.Outcome)
		}

		pending = pending[:0:0]
		for _, fe := range result.Errors {
			if field, ok := props.Field(fe.Name); ok {
				pending = append(pending, field)
			}
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+fe.Message); err != nil {
				return render.SubmitResult{}, err
			}
		}
	}
	return render.SubmitResult{}, ErrTooManyAttempts
}

func (r *Renderer) report(ctx context.Context, out sandbox.Outcome) error {
	prefix := r.theme.SuccessPrefix
	if !out.Succeeded() {
		prefix = r.theme.ErrorPrefix
	}
	return r.driver.Info(ctx, prefix+out.Message)
}

func (r *Renderer) prompt(ctx context.Context, form *render.FormInstance, field schema.ComponentField) (any, error) {
	current, _ := form.Value(field.Name)
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch field.Type {
	case schema.FieldCheckbox:
		checked, _ := current.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked})

	case schema.FieldSelect:
		options := append([]string(nil), field.Options...)
		if !field.Required {
			options = append([]string{noneOption}, options...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, fields.Stringify(current)),
			Help:         field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) || options[idx] == noneOption {
			return "", nil
		}
		return options[idx], nil

	case schema.FieldTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: fields.Stringify(current),
			Help:    field.Placeholder,
		})

	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: fields.Stringify(current),
			Help:    field.Placeholder,
			Validator: func(s string) error {
				if msg, failed := fields.ValidateField(field, s); failed {
					return errors.New(msg)
				}
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
		if field.Type == schema.FieldNumber && answer != "" {
			if n, ok := fields.ParseNumber(answer); ok {
				return n, nil
			}
		}
		return answer, nil
	}
}

func (r *Renderer) serialize(subs []Submission) ([]byte, error) {
	if subs == nil {
		subs = []Submission{}
	}
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		for _, sub := range subs {
			for name, value := range sub.Values {
				values.Set(sub.ID+"."+name, fields.Stringify(value))
			}
		}
		return []byte(values.Encode()), nil

	case OutputFormatPrettyText:
		var b strings.Builder
		for _, sub := range subs {
			fmt.Fprintf(&b, "%s:\n", sub.ID)
			names := make([]string, 0, len(sub.Values))
			for name := range sub.Values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "  %s: %s\n", name, fields.Stringify(sub.Values[name]))
			}
			if sub.Outcome != nil {
				fmt.Fprintf(&b, "  => %s: %s\n", sub.Outcome.Kind, sub.Outcome.Message)
			}
		}
		return []byte(b.String()), nil

	default:
		out, err := json.MarshalIndent(map[string]any{"forms": subs}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode submissions: %w", err)
		}
		return out, nil
	}
}
