// Package sandbox runs author-supplied form submission fragments.
//
// A fragment is the body of a function written in a small JavaScript subset
// (see package script). Execute screens it with a textual pre-check, parses
// it, and evaluates it against a fresh, closed set of global bindings: the
// submitted values plus a handful of pure helpers (Math, JSON, String, Date,
// RegExp and friends) and a console that writes to the configured logger.
// Nothing else from the host is reachable. Blocked capability names such as
// fetch or setTimeout resolve to undefined.
//
// Every failure is reported as a single *ExecutionError whose Reason tells
// rejection, syntax, runtime, thrown, limit and cancellation apart. The
// returned value is shaped into an Outcome: an object carrying a string
// "error" or "success" key is surfaced verbatim, anything else counts as an
// implicit success.
package sandbox
