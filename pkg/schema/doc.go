// Package schema defines the page description consumed by the rest of
// uibuilder: an ordered list of typed components (forms, text blocks and
// images) plus the record shape used when schemas are persisted.
//
// Component is a closed tagged variant. Exactly one of the Form, Text or Image
// payloads is populated for a recognised type; values decoded outside the
// structural validator may carry an unrecognised type, in which case the raw
// props are preserved for the dispatcher's fallback path.
package schema
