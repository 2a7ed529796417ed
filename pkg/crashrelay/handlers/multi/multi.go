// Package multi provides a handler that fans out to multiple handlers.
// All handlers receive all reports; errors are aggregated.
//
// The registry slot holds exactly one handler, so multi is how an
// application feeds more than one backend at once.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// multiHandler fans out to multiple handlers.
type multiHandler struct {
	handlers []crashrelay.Handler
}

// NewHandler creates a handler that delivers to every given handler.
// All handlers receive all reports. Errors are aggregated via errors.Join.
func NewHandler(handlers ...crashrelay.Handler) crashrelay.Handler {
	return &multiHandler{
		handlers: handlers,
	}
}

// Handle sends the report to all handlers, collecting any errors.
// All handlers are called even if some return errors.
func (m *multiHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	var errs []error
	for _, h := range m.handlers {
		if err := h.Handle(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush calls Flush on every handler that buffers, collecting any errors.
func (m *multiHandler) Flush(ctx context.Context) error {
	var errs []error
	for _, h := range m.handlers {
		if f, ok := h.(crashrelay.Flusher); ok {
			if err := f.Flush(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every handler that holds resources, collecting any
// errors.
func (m *multiHandler) Close() error {
	var errs []error
	for _, h := range m.handlers {
		if c, ok := h.(crashrelay.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
