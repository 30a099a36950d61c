package render

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// Executor runs a form's submission fragment against its values.
// *sandbox.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, fragment string, input map[string]any) (sandbox.Outcome, error)
}

// TransitionHook observes form state changes. It runs while the form is
// locked and must not call back into the FormInstance.
type TransitionHook func(formID string, from, to FormState)

// Dispatcher turns components into nodes and mounts pages.
type Dispatcher struct {
	executor Executor
	logger   logrus.FieldLogger
	hook     TransitionHook
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExecutor sets the executor used by mounted forms.
func WithExecutor(exec Executor) Option {
	return func(d *Dispatcher) {
		if exec != nil {
			d.executor = exec
		}
	}
}

// WithLogger sets the logger used for dispatch and form transitions.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTransitionHook registers a callback fired on every form transition.
func WithTransitionHook(hook TransitionHook) Option {
	return func(d *Dispatcher) {
		d.hook = hook
	}
}

// NewDispatcher constructs a Dispatcher. Without WithExecutor forms run their
// fragments in a default sandbox.Executor.
func NewDispatcher(opts ...Option) *Dispatcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Dispatcher{logger: discard}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.executor == nil {
		d.executor = sandbox.New(sandbox.WithLogger(d.logger))
	}
	return d
}

// Render maps a component onto its node. Every input yields a node: a
// discriminant outside the closed set, a known one missing its props, or props
// carrying a value outside their enums (text variant, field type, duplicate
// field name) take the fallback arm.
func (d *Dispatcher) Render(c schema.Component) Node {
	switch c.Type {
	case schema.TypeForm:
		if c.Form != nil && renderableForm(*c.Form) {
			return formNode(c.ID, *c.Form)
		}
	case schema.TypeText:
		if c.Text != nil && c.Text.Variant.Known() {
			return textNode(c.ID, *c.Text)
		}
	case schema.TypeImage:
		if c.Image != nil {
			return imageNode(c.ID, *c.Image)
		}
	}
	d.logger.WithFields(logrus.Fields{
		"component": c.ID,
		"type":      c.Type,
	}).Debug("rendering fallback for unrecognised component")
	return unknownNode(c.ID)
}

func renderableForm(props schema.FormProps) bool {
	seen := make(map[string]struct{}, len(props.Fields))
	for _, field := range props.Fields {
		if !field.Type.Known() {
			return false
		}
		if _, dup := seen[field.Name]; dup {
			return false
		}
		seen[field.Name] = struct{}{}
	}
	return true
}

// Mount renders every component in order and creates a fresh FormInstance for
// each form component.
func (d *Dispatcher) Mount(s schema.UISchema) *Page {
	page := &Page{Nodes: make([]Node, 0, len(s.Components))}
	for _, c := range s.Components {
		node := d.Render(c)
		page.Nodes = append(page.Nodes, node)
		if node.Kind == KindForm {
			page.forms = append(page.forms, newFormInstance(c.ID, *c.Form, d.executor, d.logger, d.hook))
		}
	}
	return page
}

// Page is a mounted schema.
type Page struct {
	Nodes []Node
	forms []*FormInstance
}

// Forms returns the page's form instances in schema order.
func (p *Page) Forms() []*FormInstance {
	return append([]*FormInstance(nil), p.forms...)
}

// Form returns the first form instance mounted for the component id.
func (p *Page) Form(id string) (*FormInstance, bool) {
	for _, f := range p.forms {
		if f.ID() == id {
			return f, true
		}
	}
	return nil, false
}
