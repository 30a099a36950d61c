package sandbox

import "github.com/goliatone/go-uibuilder/pkg/sandbox/script"

// OutcomeKind tells how a submission ended.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeFailure  OutcomeKind = "failure"
	OutcomeImplicit OutcomeKind = "implicit"
)

// ImplicitSuccessMessage is reported when a fragment returns nothing usable,
// and when a form has no fragment at all.
const ImplicitSuccessMessage = "Form submitted successfully!"

// Outcome is the shaped result of a fragment.
type Outcome struct {
	Kind    OutcomeKind    `json:"kind"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Implicit returns the outcome used when no explicit result is available.
func Implicit() Outcome {
	return Outcome{Kind: OutcomeImplicit, Message: ImplicitSuccessMessage}
}

// Succeeded reports whether the outcome is a success, explicit or implicit.
func (o Outcome) Succeeded() bool {
	return o.Kind != OutcomeFailure
}

// Result renders the outcome in the {success} / {error} shape authors write.
func (o Outcome) Result() map[string]string {
	if o.Kind == OutcomeFailure {
		return map[string]string{"error": o.Message}
	}
	return map[string]string{"success": o.Message}
}

// shapeOutcome maps a returned script value onto an Outcome. A string
// "error" wins over "success" when an object carries both.
func shapeOutcome(v script.Value) Outcome {
	obj, ok := v.(*script.Object)
	if !ok {
		return Implicit()
	}
	payload, _ := script.ToGo(obj).(map[string]any)

	if msg, ok := stringProp(obj, "error"); ok {
		return Outcome{Kind: OutcomeFailure, Message: msg, Payload: payload}
	}
	if msg, ok := stringProp(obj, "success"); ok {
		return Outcome{Kind: OutcomeSuccess, Message: msg, Payload: payload}
	}
	out := Implicit()
	out.Payload = payload
	return out
}

func stringProp(obj *script.Object, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
