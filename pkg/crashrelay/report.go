// report.go defines the canonical crash report data structure for crashrelay.

package crashrelay

import (
	"fmt"
	"time"
)

// StackTrace is an ordered sequence of raw instruction addresses,
// most-recent-call-first. Values are program counters exactly as captured at
// the throw site; no transformation is applied. Treat a StackTrace as
// immutable once captured.
type StackTrace []uintptr

// Hex renders the addresses as 0x-prefixed hex strings, most-recent-first.
// Wire formats use strings because raw 64-bit addresses do not survive JSON
// number precision.
func (t StackTrace) Hex() []string {
	if len(t) == 0 {
		return nil
	}
	out := make([]string, len(t))
	for i, pc := range t {
		out[i] = fmt.Sprintf("0x%x", uint64(pc))
	}
	return out
}

// SystemState captures process metrics at the time of a crash report.
type SystemState struct {
	// MemoryBytes is the current heap allocation in bytes.
	MemoryBytes int64

	// GoroutineCount is the number of active goroutines.
	GoroutineCount int

	// UptimeMs is the process uptime in milliseconds.
	UptimeMs int64

	// HostName is the hostname of the machine where the crash occurred.
	HostName string
}

// Report is the canonical crash representation delivered to the active
// Handler. Extract fills the address/type/message triple; the Registry fills
// the enrichment fields before delivery.
type Report struct {
	// Identity fields

	// EventID is a unique identifier for this report (UUID).
	EventID string

	// Timestamp is when the report was captured.
	Timestamp time.Time

	// Fingerprint is a stable hash for grouping similar crashes.
	Fingerprint string

	// Crash details

	// Addresses is the raw return-address trace from the original throw
	// site, most-recent-first. Empty when the runtime could not supply a
	// trace; handlers must treat a zero-length trace as valid.
	Addresses StackTrace

	// ExceptionType is the fully-qualified runtime type name of the thrown
	// value.
	ExceptionType string

	// Message is the human-readable description. Always present as a
	// string; empty when the thrown value carried none.
	Message string

	// System state

	// System captures process metrics at report time.
	System *SystemState

	// Metadata contains optional scrubbed key-value pairs for additional
	// application context.
	Metadata map[string]string
}
