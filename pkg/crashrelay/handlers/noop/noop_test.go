package noop

import (
	"context"
	"testing"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

func TestNoopHandler_ImplementsHandlerInterface(t *testing.T) {
	var _ crashrelay.Handler = NewHandler()
}

func TestNoopHandler_Handle_ReturnsNil(t *testing.T) {
	h := NewHandler()

	err := h.Handle(context.Background(), crashrelay.Report{
		EventID:       "evt-123",
		ExceptionType: "FooError",
		Message:       "discarded",
	})
	if err != nil {
		t.Errorf("Handle returned error: %v", err)
	}
}
