package render

import "encoding/json"

// Diagnostic describes a node the renderer had to drop.
type Diagnostic struct {
	// Path locates the node, e.g. "0/children/2/children/1" (document index first).
	Path string
	Raw  json.RawMessage
}

// Diagnostics receives reports about malformed input. Implementations must not
// block for long: they run inside the render pass.
type Diagnostics interface {
	MalformedNode(Diagnostic)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(Diagnostic)

// MalformedNode implements Diagnostics.
func (f DiagnosticsFunc) MalformedNode(d Diagnostic) {
	f(d)
}

// NopDiagnostics discards every report.
type NopDiagnostics struct{}

// MalformedNode implements Diagnostics.
func (NopDiagnostics) MalformedNode(Diagnostic) {}
