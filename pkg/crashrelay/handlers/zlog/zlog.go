// Package zlog provides a handler that emits each report as a structured
// zerolog event, for deployments that ship crash provenance through an
// existing log pipeline instead of a dedicated backend.
package zlog

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// zlogHandler writes reports through a zerolog.Logger.
type zlogHandler struct {
	logger zerolog.Logger
}

// NewHandler creates a handler that logs each report at error level on
// logger.
func NewHandler(logger zerolog.Logger) crashrelay.Handler {
	return &zlogHandler{logger: logger}
}

// Handle emits one report as a single structured event.
func (h *zlogHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	event := h.logger.Error().
		Str("event_id", report.EventID).
		Time("crash_time", report.Timestamp).
		Str("exception_type", report.ExceptionType).
		Str("message", report.Message).
		Strs("addresses", report.Addresses.Hex())

	if report.Fingerprint != "" {
		event = event.Str("fingerprint", report.Fingerprint)
	}
	if report.System != nil {
		event = event.
			Int("goroutines", report.System.GoroutineCount).
			Int64("memory_bytes", report.System.MemoryBytes).
			Int64("uptime_ms", report.System.UptimeMs)
	}
	for k, v := range report.Metadata {
		event = event.Str("meta_"+k, v)
	}

	event.Msg("crash report")
	return nil
}
