package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// stubDriver replays scripted answers. Input answers that fail the prompt's
// validator are reported through Info and the next answer is used, the way
// survey re-asks.
type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	for {
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.infoMessages = append(s.infoMessages, "invalid: "+err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func float(v float64) *float64 { return &v }

func mount(components ...schema.Component) *render.Page {
	return render.NewDispatcher().Mount(schema.UISchema{Components: components})
}

func TestRenderFillsAndSubmitsForm(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"", "Ada", "not-an-email", "ada@example.com", "3", "7"},
		selectIdx: []int{2},
		confirm:   []bool{true},
		textAreas: []string{"Hello"},
	}
	page := mount(
		schema.Component{Type: schema.TypeText, ID: "t", Text: &schema.TextProps{Variant: schema.VariantH1, Content: "Signup"}},
		schema.Component{Type: schema.TypeForm, ID: "signup", Form: &schema.FormProps{
			Title: "Join",
			Fields: []schema.ComponentField{
				{Label: "Name", Name: "name", Type: schema.FieldText, Required: true},
				{Label: "Email", Name: "email", Type: schema.FieldEmail, Required: true},
				{Label: "Age", Name: "age", Type: schema.FieldNumber, Min: float(5), Max: float(10)},
				{Label: "Plan", Name: "plan", Type: schema.FieldSelect, Options: []string{"free", "pro"}},
				{Label: "Terms", Name: "terms", Type: schema.FieldCheckbox, Required: true},
				{Label: "Note", Name: "note", Type: schema.FieldTextarea},
			},
			OnSubmit: "return { success: `Welcome ${values.name} (${values.plan}, ${values.age})` };",
		}},
	)

	out, err := New(WithPromptDriver(driver)).Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantInfo := []string{
		"Signup\n======",
		"Join",
		"invalid: Name is required",
		"invalid: Please enter a valid email address",
		"invalid: Value must be at least 5",
		render.SubmittingText,
		DefaultTheme.SuccessPrefix + "Welcome Ada (pro, 7)",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(out), `"message": "Welcome Ada (pro, 7)"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderRepromptsInvalidFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirm: []bool{false, true}}
	page := mount(schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{
		Fields: []schema.ComponentField{{Label: "Terms", Name: "terms", Type: schema.FieldCheckbox, Required: true}},
	}})

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded)).
		Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if driver.confirmPos != 2 {
		t.Fatalf("expected the checkbox to be asked twice, got %d", driver.confirmPos)
	}
	if string(out) != "f.terms=true" {
		t.Fatalf("unexpected output %q", out)
	}
	if !contains(driver.infoMessages, DefaultTheme.ErrorPrefix+"Terms is required") {
		t.Fatalf("expected required message, got %v", driver.infoMessages)
	}
}

func TestRenderGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirm: []bool{false, false}}
	page := mount(schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{
		Fields: []schema.ComponentField{{Label: "Terms", Name: "terms", Type: schema.FieldCheckbox, Required: true}},
	}})

	_, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Render(context.Background(), page, render.RenderOptions{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRenderPrettyOutputAndFailure(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{"x"}}
	page := mount(
		schema.Component{Type: schema.TypeImage, ID: "i", Image: &schema.ImageProps{Src: "/a.png", Alt: "A"}},
		schema.Component{Type: "video", ID: "v"},
		schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{
			Fields:   []schema.ComponentField{{Label: "Code", Name: "code", Type: schema.FieldText}},
			OnSubmit: `throw new Error("nope");`,
		}},
	)

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText)).
		Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "f:\n  code: x\n  => failure: Execution failed: User code error: Error: nope\n"
	if string(out) != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if driver.infoMessages[0] != "[image: A] /a.png" || driver.infoMessages[1] != DefaultTheme.ErrorPrefix+render.UnknownComponentText {
		t.Fatalf("unexpected info %v", driver.infoMessages)
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	cases := map[OutputFormat]string{
		OutputFormatJSON:           "application/json",
		OutputFormatFormURLEncoded: "application/x-www-form-urlencoded",
		OutputFormatPrettyText:     "text/plain",
	}
	for format, want := range cases {
		if got := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(format)).ContentType(); got != want {
			t.Fatalf("%s: expected %s, got %s", format, want, got)
		}
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
