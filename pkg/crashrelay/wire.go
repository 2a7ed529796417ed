// wire.go defines the JSON serialization of a crash report shared by the
// spool and http handlers and the relay agent.

package crashrelay

import "time"

// WireReport is the JSON shape of a Report as persisted to spool files and
// submitted to ingestion endpoints. Addresses are 0x-prefixed hex strings
// because raw 64-bit values do not survive JSON number precision.
type WireReport struct {
	EventID       string            `json:"event_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Fingerprint   string            `json:"fingerprint,omitempty"`
	ExceptionType string            `json:"exception_type"`
	Message       string            `json:"message"`
	Addresses     []string          `json:"addresses"`
	System        *WireSystemState  `json:"system,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// WireSystemState is the JSON shape of SystemState.
type WireSystemState struct {
	MemoryBytes    int64  `json:"memory_bytes"`
	GoroutineCount int    `json:"goroutine_count"`
	UptimeMs       int64  `json:"uptime_ms"`
	HostName       string `json:"host_name,omitempty"`
}

// ToWire converts a Report to its wire form.
func (r Report) ToWire() WireReport {
	w := WireReport{
		EventID:       r.EventID,
		Timestamp:     r.Timestamp,
		Fingerprint:   r.Fingerprint,
		ExceptionType: r.ExceptionType,
		Message:       r.Message,
		Addresses:     r.Addresses.Hex(),
		Metadata:      r.Metadata,
	}
	if r.System != nil {
		w.System = &WireSystemState{
			MemoryBytes:    r.System.MemoryBytes,
			GoroutineCount: r.System.GoroutineCount,
			UptimeMs:       r.System.UptimeMs,
			HostName:       r.System.HostName,
		}
	}
	return w
}
