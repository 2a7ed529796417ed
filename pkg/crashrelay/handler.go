// handler.go defines the Handler capability for crash report destinations.

package crashrelay

import "context"

// Handler is the destination capability for crash reports. Exactly one
// Handler is active per process at a time; see Registry.
//
// Implementations must be safe for concurrent use: crashes on separate
// goroutines are delivered concurrently.
type Handler interface {
	// Handle converts and submits one report to a backend. Called
	// synchronously on the goroutine the crash occurred on. Errors are
	// contained by the Registry and never reach the crashing code.
	Handle(ctx context.Context, report Report) error
}

// Flusher is an optional capability for handlers that buffer reports.
// Composite handlers discover it by type assertion.
type Flusher interface {
	// Flush ensures any buffered reports are persisted.
	Flush(ctx context.Context) error
}

// Closer is an optional capability for handlers that hold resources.
// Composite handlers discover it by type assertion.
type Closer interface {
	// Close releases resources held by the handler. After Close, Handle
	// should return errors.
	Close() error
}
