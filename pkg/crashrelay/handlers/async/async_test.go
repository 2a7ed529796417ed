package async

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// slowHandler records reports after an optional delay.
type slowHandler struct {
	mu      sync.Mutex
	reports []crashrelay.Report
	delay   time.Duration
}

func (h *slowHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = append(h.reports, report)
	return nil
}

func (h *slowHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.reports)
}

func TestAsyncHandler_ImplementsHandlerInterface(t *testing.T) {
	h := NewHandler(&slowHandler{})
	defer h.(crashrelay.Closer).Close()
	var _ crashrelay.Handler = h
}

func TestAsyncHandler_DeliversInBackground(t *testing.T) {
	inner := &slowHandler{}
	h := NewHandler(inner)
	defer h.(crashrelay.Closer).Close()

	if err := h.Handle(context.Background(), crashrelay.Report{EventID: "evt-1"}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.(crashrelay.Flusher).Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	if got := inner.count(); got != 1 {
		t.Errorf("inner handler received %d reports, want 1", got)
	}
}

func TestAsyncHandler_DropsOldestWhenFull(t *testing.T) {
	var droppedMu sync.Mutex
	dropped := 0

	inner := &slowHandler{delay: 50 * time.Millisecond}
	h := NewHandler(inner,
		WithQueueSize(2),
		WithOnDropped(func(count int) {
			droppedMu.Lock()
			dropped += count
			droppedMu.Unlock()
		}),
	)
	defer h.(crashrelay.Closer).Close()

	for i := 0; i < 10; i++ {
		_ = h.Handle(context.Background(), crashrelay.Report{EventID: fmt.Sprintf("evt-%d", i)})
	}

	droppedMu.Lock()
	got := dropped
	droppedMu.Unlock()
	if got == 0 {
		t.Error("overflowing a size-2 queue should drop reports")
	}
}

func TestAsyncHandler_Close_DrainsQueue(t *testing.T) {
	inner := &slowHandler{}
	h := NewHandler(inner)

	for i := 0; i < 5; i++ {
		_ = h.Handle(context.Background(), crashrelay.Report{EventID: fmt.Sprintf("evt-%d", i)})
	}

	if err := h.(crashrelay.Closer).Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if got := inner.count(); got != 5 {
		t.Errorf("inner handler received %d reports after Close, want 5", got)
	}
}

func TestAsyncHandler_HandleAfterClose_ReturnsError(t *testing.T) {
	h := NewHandler(&slowHandler{})
	_ = h.(crashrelay.Closer).Close()

	if err := h.Handle(context.Background(), crashrelay.Report{EventID: "late"}); err == nil {
		t.Error("Handle after Close should return an error")
	}
}
