// Package stderr provides a handler that prints reports to stderr in
// human-readable form. Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// HandlerOption configures the stderr handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose enables the raw address dump for each report.
func WithVerbose() HandlerOption {
	return func(c *handlerConfig) {
		c.verbose = true
	}
}

// WithWriter redirects output away from os.Stderr. Used by tests.
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.out = w
	}
}

// stderrHandler writes reports to stderr in human-readable format.
type stderrHandler struct {
	verbose bool
	out     io.Writer
}

// NewHandler creates a handler that writes to stderr.
func NewHandler(opts ...HandlerOption) crashrelay.Handler {
	cfg := &handlerConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrHandler{
		verbose: cfg.verbose,
		out:     cfg.out,
	}
}

// Handle formats and outputs the report.
func (h *stderrHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	// Main line.
	// Format: [CRASH-RELAY] <timestamp> <exception_type> (<n> frames)
	timestamp := report.Timestamp.Format("2006-01-02T15:04:05Z07:00")

	fmt.Fprintf(h.out, "[CRASH-RELAY] %s %s (%d frames)\n",
		timestamp, report.ExceptionType, len(report.Addresses))

	if report.Message != "" {
		fmt.Fprintf(h.out, "        Message: %s\n", report.Message)
	}

	if report.Fingerprint != "" {
		fmt.Fprintf(h.out, "        Fingerprint: %s\n", report.Fingerprint)
	}

	if report.System != nil {
		fmt.Fprintf(h.out, "        System: %d goroutines, %d bytes, up %dms\n",
			report.System.GoroutineCount, report.System.MemoryBytes, report.System.UptimeMs)
	}

	// Raw addresses (only in verbose mode). Zero-length traces are valid;
	// nothing is printed for them.
	if h.verbose && len(report.Addresses) > 0 {
		fmt.Fprintf(h.out, "        Addresses: %s\n",
			strings.Join(report.Addresses.Hex(), " "))
	}

	return nil
}
