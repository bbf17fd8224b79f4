// Package sink defines the shared transport-write interface that module
// handlers use to emit asynchronous events back to the client, without
// importing the transport package itself (avoiding an import cycle between
// transport, router, and the module handlers).
package sink

// Sink is a thread-safe, write-only handle onto one client connection. All
// module handlers for a connection share the same Sink, so the only
// ordering guarantee across modules is "whoever's send call acquires the
// underlying lock first" — see SPEC_FULL.md §5.
type Sink interface {
	// SendJSON marshals v and writes it as one text frame.
	SendJSON(v any) error
	// SendBinary writes data as one binary frame.
	SendBinary(data []byte) error
}
