// Package spool provides a handler that persists each report as a JSON file
// in a spool directory, to be drained later by the relay agent. Writes are
// atomic (temp file then rename) so the agent never observes a half-written
// report.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// Suffix is the filename suffix of completed spool entries.
const Suffix = ".json"

// spoolHandler writes reports to a spool directory.
type spoolHandler struct {
	dir string
}

// NewHandler creates a handler that spools reports under dir. The directory
// is created on first write if it does not exist.
func NewHandler(dir string) crashrelay.Handler {
	return &spoolHandler{dir: dir}
}

// Handle persists one report as report-<uuid>.json.
func (h *spoolHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	if err := os.MkdirAll(h.dir, 0o700); err != nil {
		return fmt.Errorf("spool dir: %w", err)
	}

	data, err := json.MarshalIndent(report.ToWire(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	name := report.EventID
	if name == "" {
		name = uuid.NewString()
	}
	path := filepath.Join(h.dir, "report-"+name+Suffix)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}
