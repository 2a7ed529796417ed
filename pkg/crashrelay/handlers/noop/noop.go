// Package noop provides a no-operation handler that discards all reports.
// Useful for testing and for disabling crash reporting.
package noop

import (
	"context"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// noopHandler discards all reports.
type noopHandler struct{}

// NewHandler creates a handler that discards all reports.
func NewHandler() crashrelay.Handler {
	return &noopHandler{}
}

// Handle discards the report and returns nil.
func (h *noopHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	return nil
}
