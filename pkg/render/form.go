package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-uibuilder/pkg/fields"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// FormState is a step of the submission protocol.
type FormState string

const (
	StateIdle       FormState = "idle"
	StateValidating FormState = "validating"
	StateInvalid    FormState = "invalid"
	StateValid      FormState = "valid"
	StateExecuting  FormState = "executing"
	StateSucceeded  FormState = "succeeded"
	StateFailed     FormState = "failed"
)

var (
	// ErrSubmitInFlight is returned by Submit while another submission of the
	// same form has not finished.
	ErrSubmitInFlight = errors.New("render: submission already in flight")
	// ErrUnknownField is returned by SetValue for names the form does not declare.
	ErrUnknownField = errors.New("render: unknown field")
)

// SubmitResult reports one submission. Errors is set when validation failed
// and the executor was not called. Otherwise Outcome is set, and Err carries
// the executor failure behind a failure outcome.
type SubmitResult struct {
	Errors  fields.Errors
	Outcome *sandbox.Outcome
	Err     error
}

// Valid reports whether the submission got past field validation.
func (r SubmitResult) Valid() bool {
	return len(r.Errors) == 0
}

// FormInstance holds the values, errors and last outcome of one mounted form.
// It is safe for concurrent use.
type FormInstance struct {
	id       string
	props    schema.FormProps
	executor Executor
	logger   logrus.FieldLogger
	hook     TransitionHook

	mu      sync.Mutex
	state   FormState
	values  map[string]any
	errors  fields.Errors
	outcome *sandbox.Outcome
}

func newFormInstance(id string, props schema.FormProps, exec Executor, logger logrus.FieldLogger, hook TransitionHook) *FormInstance {
	props.Fields = append([]schema.ComponentField(nil), props.Fields...)
	return &FormInstance{
		id:       id,
		props:    props,
		executor: exec,
		logger:   logger.WithField("form", id),
		hook:     hook,
		state:    StateIdle,
		values:   make(map[string]any),
	}
}

// ID returns the component id the form was mounted from.
func (f *FormInstance) ID() string {
	return f.id
}

// Props returns the form definition.
func (f *FormInstance) Props() schema.FormProps {
	return f.props
}

// SetValue stores a field value, clearing that field's error and the last
// outcome.
func (f *FormInstance) SetValue(name string, value any) error {
	if _, ok := f.props.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[name] = value
	f.errors = f.errors.Without(name)
	f.outcome = nil
	return nil
}

// Value returns the stored value of a field.
func (f *FormInstance) Value(name string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[name]
	return v, ok
}

// Values returns a copy of the stored values.
func (f *FormInstance) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyValues(f.values)
}

// Errors returns the field errors of the last submission still outstanding.
func (f *FormInstance) Errors() fields.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(fields.Errors(nil), f.errors...)
}

// Outcome returns the last outcome, if any.
func (f *FormInstance) Outcome() (sandbox.Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == nil {
		return sandbox.Outcome{}, false
	}
	return *f.outcome, true
}

// State returns the current protocol state.
func (f *FormInstance) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SubmitLabel is the text the submit button shows right now.
func (f *FormInstance) SubmitLabel() string {
	if f.State() == StateExecuting {
		return SubmittingText
	}
	return submitText(f.props)
}

// Submit validates every field and, when all pass, runs the form's fragment
// with the values keyed by field name. A form without a fragment succeeds
// implicitly. Submit returns ErrSubmitInFlight if called while another
// submission is running; the form is back to idle when it returns.
func (f *FormInstance) Submit(ctx context.Context) (SubmitResult, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}
	f.transition(StateValidating)

	values := copyValues(f.values)
	errs := fields.ValidateAll(f.props.Fields, values)
	f.errors = errs
	if len(errs) > 0 {
		f.transition(StateInvalid)
		f.transition(StateIdle)
		f.mu.Unlock()
		f.logger.WithField("errors", len(errs)).Debug("submission rejected by field validation")
		return SubmitResult{Errors: errs}, nil
	}

	f.transition(StateValid)
	f.transition(StateExecuting)
	f.outcome = nil
	f.mu.Unlock()

	started := time.Now()
	out, err := f.execute(ctx, values)

	f.mu.Lock()
	f.outcome = &out
	if out.Succeeded() {
		f.transition(StateSucceeded)
	} else {
		f.transition(StateFailed)
	}
	f.transition(StateIdle)
	f.mu.Unlock()

	f.logger.WithFields(logrus.Fields{
		"outcome":  out.Kind,
		"duration": time.Since(started),
	}).Debug("submission finished")

	result := out
	return SubmitResult{Outcome: &result, Err: err}, nil
}

func (f *FormInstance) execute(ctx context.Context, values map[string]any) (sandbox.Outcome, error) {
	if f.props.OnSubmit == "" {
		return sandbox.Implicit(), nil
	}
	out, err := f.executor.Execute(ctx, f.props.OnSubmit, values)
	if err != nil {
		return sandbox.Outcome{Kind: sandbox.OutcomeFailure, Message: err.Error()}, err
	}
	return out, nil
}

// transition must be called with f.mu held.
func (f *FormInstance) transition(to FormState) {
	from := f.state
	f.state = to
	if f.hook != nil {
		f.hook(f.id, from, to)
	}
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// FormSnapshot is a point-in-time view of a form instance.
type FormSnapshot struct {
	ID      string            `json:"id"`
	State   FormState         `json:"state"`
	Values  map[string]any    `json:"values"`
	Errors  map[string]string `json:"errors,omitempty"`
	Outcome *sandbox.Outcome  `json:"outcome,omitempty"`
}

// Snapshot captures the form's current state.
func (f *FormInstance) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := FormSnapshot{
		ID:     f.id,
		State:  f.state,
		Values: copyValues(f.values),
	}
	if len(f.errors) > 0 {
		snap.Errors = f.errors.Map()
	}
	if f.outcome != nil {
		out := *f.outcome
		snap.Outcome = &out
	}
	return snap
}
