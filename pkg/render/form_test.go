package render_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/pkg/fields"
	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

type stubExecutor struct {
	mu      sync.Mutex
	calls   []map[string]any
	outcome sandbox.Outcome
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubExecutor) Execute(_ context.Context, _ string, input map[string]any) (sandbox.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, input)
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.outcome, s.err
}

func (s *stubExecutor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func mountForm(t *testing.T, exec render.Executor, props schema.FormProps, opts ...render.Option) *render.FormInstance {
	t.Helper()
	opts = append(opts, render.WithExecutor(exec))
	page := render.NewDispatcher(opts...).Mount(schema.UISchema{Components: []schema.Component{
		{Type: schema.TypeForm, ID: "contact", Form: &props},
	}})
	form, ok := page.Form("contact")
	if !ok {
		t.Fatal("form not mounted")
	}
	return form
}

func contactProps(onSubmit string) schema.FormProps {
	return schema.FormProps{
		Fields: []schema.ComponentField{
			{Label: "Name", Name: "name", Type: schema.FieldText, Required: true},
			{Label: "Email", Name: "email", Type: schema.FieldEmail, Required: true},
		},
		OnSubmit: onSubmit,
	}
}

func TestSubmitValidatesBeforeExecuting(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcome: sandbox.Outcome{Kind: sandbox.OutcomeSuccess, Message: "ok"}}
	form := mountForm(t, exec, contactProps(`return { success: "ok" };`))
	if err := form.SetValue("name", "Ada"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	result, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := fields.Errors{{Name: "email", Message: "Email is required"}}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if result.Valid() || result.Outcome != nil {
		t.Fatalf("expected invalid result without outcome, got %+v", result)
	}
	if exec.Calls() != 0 {
		t.Fatalf("executor called %d times for an invalid form", exec.Calls())
	}
	if form.State() != render.StateIdle {
		t.Fatalf("expected idle after submit, got %s", form.State())
	}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("stored errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitPassesValuesAndRecordsOutcome(t *testing.T) {
	t.Parallel()

	var transitions []string
	hook := func(id string, from, to render.FormState) {
		transitions = append(transitions, string(from)+">"+string(to))
	}

	exec := &stubExecutor{outcome: sandbox.Outcome{Kind: sandbox.OutcomeSuccess, Message: "Thanks"}}
	form := mountForm(t, exec, contactProps(`return { success: "Thanks" };`), render.WithTransitionHook(hook))
	_ = form.SetValue("name", "Ada")
	_ = form.SetValue("email", "ada@example.com")

	result, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Outcome == nil || result.Outcome.Message != "Thanks" || result.Err != nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if diff := cmp.Diff([]map[string]any{{"name": "Ada", "email": "ada@example.com"}}, exec.calls); diff != "" {
		t.Fatalf("executor input mismatch (-want +got):\n%s", diff)
	}

	wantTransitions := []string{"idle>validating", "validating>valid", "valid>executing", "executing>succeeded", "succeeded>idle"}
	if diff := cmp.Diff(wantTransitions, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}

	if out, ok := form.Outcome(); !ok || out.Message != "Thanks" {
		t.Fatalf("expected stored outcome, got %+v %v", out, ok)
	}
	_ = form.SetValue("name", "Grace")
	if _, ok := form.Outcome(); ok {
		t.Fatal("SetValue should clear the last outcome")
	}
}

func TestSubmitInvalidTransitions(t *testing.T) {
	t.Parallel()

	var transitions []string
	hook := func(_ string, from, to render.FormState) {
		transitions = append(transitions, string(from)+">"+string(to))
	}
	form := mountForm(t, &stubExecutor{}, contactProps(""), render.WithTransitionHook(hook))
	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := []string{"idle>validating", "validating>invalid", "invalid>idle"}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitWithoutHandlerSucceedsImplicitly(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{}
	form := mountForm(t, exec, contactProps(""))
	_ = form.SetValue("name", "Ada")
	_ = form.SetValue("email", "ada@example.com")

	result, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if diff := cmp.Diff(sandbox.Implicit(), *result.Outcome); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}
	if exec.Calls() != 0 {
		t.Fatal("executor should not run without a fragment")
	}
}

func TestSubmitExecutorFailureBecomesOutcome(t *testing.T) {
	t.Parallel()

	boom := errors.New("Execution failed: User code error: boom")
	exec := &stubExecutor{err: boom}
	form := mountForm(t, exec, contactProps(`throw "boom";`))
	_ = form.SetValue("name", "Ada")
	_ = form.SetValue("email", "ada@example.com")

	result, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !errors.Is(result.Err, boom) {
		t.Fatalf("expected executor error, got %v", result.Err)
	}
	want := sandbox.Outcome{Kind: sandbox.OutcomeFailure, Message: boom.Error()}
	if diff := cmp.Diff(want, *result.Outcome); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{
		outcome: sandbox.Outcome{Kind: sandbox.OutcomeSuccess, Message: "ok"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	form := mountForm(t, exec, contactProps(`return { success: "ok" };`))
	_ = form.SetValue("name", "Ada")
	_ = form.SetValue("email", "ada@example.com")

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-exec.started
	if form.State() != render.StateExecuting {
		t.Fatalf("expected executing, got %s", form.State())
	}
	if form.SubmitLabel() != render.SubmittingText {
		t.Fatalf("expected in-flight label, got %q", form.SubmitLabel())
	}
	if _, err := form.Submit(context.Background()); !errors.Is(err, render.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(exec.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if exec.Calls() != 1 {
		t.Fatalf("expected one executor call, got %d", exec.Calls())
	}
	if form.SubmitLabel() != render.DefaultSubmitText {
		t.Fatalf("expected default label, got %q", form.SubmitLabel())
	}
}

func TestSetValueClearsFieldError(t *testing.T) {
	t.Parallel()

	form := mountForm(t, &stubExecutor{}, contactProps(""))
	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(form.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", form.Errors())
	}
	_ = form.SetValue("email", "ada@example.com")
	want := fields.Errors{{Name: "name", Message: "Name is required"}}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if err := form.SetValue("nope", 1); !errors.Is(err, render.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSubmitWithSandbox(t *testing.T) {
	t.Parallel()

	props := schema.FormProps{
		Fields: []schema.ComponentField{
			{Label: "Age", Name: "age", Type: schema.FieldNumber, Min: float(5), Max: float(10)},
		},
		OnSubmit: `return values.age > 7 ? { success: "older" } : { error: "younger" };`,
	}
	form := mountForm(t, sandbox.New(), props)

	_ = form.SetValue("age", 3)
	result, _ := form.Submit(context.Background())
	if msg, _ := result.Errors.For("age"); msg != "Value must be at least 5" {
		t.Fatalf("unexpected field error %q", msg)
	}

	_ = form.SetValue("age", 6)
	result, _ = form.Submit(context.Background())
	if result.Outcome == nil || result.Outcome.Kind != sandbox.OutcomeFailure || result.Outcome.Message != "younger" {
		t.Fatalf("unexpected outcome %+v", result.Outcome)
	}
	if snap := form.Snapshot(); snap.Outcome == nil || snap.State != render.StateIdle {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
