// Package async provides a handler wrapper with a bounded queue so delivery
// returns immediately while a background worker feeds a slow backend.
// Oldest reports are dropped when the queue is full.
//
// The registry's delivery guarantee is only that Handle returns before the
// crash proceeds; async is the wrapper that makes Handle fast and moves the
// actual backend submission off the crashing goroutine.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// HandlerOption configures the async handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	queueSize int
	onDropped func(count int)
}

// WithQueueSize sets the maximum number of queued reports (default: 64).
func WithQueueSize(size int) HandlerOption {
	return func(c *handlerConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithOnDropped sets a callback invoked when reports are dropped due to
// queue overflow.
func WithOnDropped(fn func(count int)) HandlerOption {
	return func(c *handlerConfig) {
		c.onDropped = fn
	}
}

// asyncHandler wraps a handler with a bounded queue.
type asyncHandler struct {
	inner     crashrelay.Handler
	queue     chan crashrelay.Report
	done      chan struct{}
	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool
	wg        sync.WaitGroup
	onDropped func(count int)
}

// NewHandler wraps inner with a bounded queue for asynchronous delivery.
// Handle returns immediately; reports are submitted in the background.
// When the queue is full, the oldest report is dropped to make room.
func NewHandler(inner crashrelay.Handler, opts ...HandlerOption) crashrelay.Handler {
	cfg := &handlerConfig{
		queueSize: 64,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &asyncHandler{
		inner:     inner,
		queue:     make(chan crashrelay.Report, cfg.queueSize),
		done:      make(chan struct{}),
		onDropped: cfg.onDropped,
	}

	h.wg.Add(1)
	go h.processLoop()

	return h
}

// processLoop drains the queue and submits to the inner handler.
func (h *asyncHandler) processLoop() {
	defer h.wg.Done()
	for {
		select {
		case report, ok := <-h.queue:
			if !ok {
				return
			}
			// Ignore errors from the inner handler (fire and forget)
			_ = h.inner.Handle(context.Background(), report)
		case <-h.done:
			// Drain remaining reports
			for {
				select {
				case report, ok := <-h.queue:
					if !ok {
						return
					}
					_ = h.inner.Handle(context.Background(), report)
				default:
					return
				}
			}
		}
	}
}

// Handle enqueues a report for background submission.
// Returns immediately. If the queue is full, drops the oldest report.
func (h *asyncHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	h.closeMu.Lock()
	if h.closed {
		h.closeMu.Unlock()
		return errors.New("async handler is closed")
	}
	h.closeMu.Unlock()

	// Try to enqueue
	select {
	case h.queue <- report:
		return nil
	default:
		// Queue is full - drop oldest and enqueue new
		h.dropOldestAndEnqueue(report)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest report and enqueues the new one.
func (h *asyncHandler) dropOldestAndEnqueue(report crashrelay.Report) {
	// Try to read (drop) one report from the queue
	select {
	case <-h.queue:
		if h.onDropped != nil {
			h.onDropped(1)
		}
	default:
		// Queue was emptied by the worker, try again
	}

	// Now try to enqueue again
	select {
	case h.queue <- report:
	default:
		// Still full, just drop the new report
		if h.onDropped != nil {
			h.onDropped(1)
		}
	}
}

// Flush blocks until all queued reports are submitted.
func (h *asyncHandler) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if len(h.queue) == 0 {
				// Give a moment for the last report to be processed
				time.Sleep(10 * time.Millisecond)
				if f, ok := h.inner.(crashrelay.Flusher); ok {
					return f.Flush(ctx)
				}
				return nil
			}
		}
	}
}

// Close stops the worker and closes the inner handler.
func (h *asyncHandler) Close() error {
	h.closeOnce.Do(func() {
		h.closeMu.Lock()
		h.closed = true
		h.closeMu.Unlock()

		// Signal done and wait for drain
		close(h.done)
		h.wg.Wait()
		close(h.queue)
	})

	if c, ok := h.inner.(crashrelay.Closer); ok {
		return c.Close()
	}
	return nil
}
