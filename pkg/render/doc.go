// Package render dispatches schema components to their renderers and owns the
// runtime state of mounted forms.
//
// Dispatcher.Render maps a single component onto a Node, the
// renderer-neutral description output renderers consume. Mount does the same
// for a whole page and creates one FormInstance per form component. A
// FormInstance runs the submission protocol: every field is validated before
// the executor sees the values, and at most one submission is in flight.
//
// Output renderers (HTML, JSON, terminal) implement Renderer and are looked
// up by name through a Registry.
package render
