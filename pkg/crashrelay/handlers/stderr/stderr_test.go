package stderr

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

func sampleReport() crashrelay.Report {
	return crashrelay.Report{
		EventID:       "evt-123",
		Timestamp:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Fingerprint:   "abcd1234",
		ExceptionType: "runtime.boundsError",
		Message:       "index out of range",
		Addresses:     crashrelay.StackTrace{0x4a2f10, 0x4a1e00},
	}
}

func TestStderrHandler_Handle_FormatsReport(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(WithWriter(&buf))

	if err := h.Handle(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "runtime.boundsError") {
		t.Errorf("output missing exception type: %q", out)
	}
	if !strings.Contains(out, "index out of range") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "(2 frames)") {
		t.Errorf("output missing frame count: %q", out)
	}
	// Addresses only appear in verbose mode
	if strings.Contains(out, "0x4a2f10") {
		t.Errorf("non-verbose output should not contain addresses: %q", out)
	}
}

func TestStderrHandler_Verbose_DumpsAddresses(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(WithVerbose(), WithWriter(&buf))

	if err := h.Handle(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "0x4a2f10 0x4a1e00") {
		t.Errorf("verbose output missing addresses: %q", out)
	}
}

func TestStderrHandler_EmptyTrace_IsValid(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(WithVerbose(), WithWriter(&buf))

	report := sampleReport()
	report.Addresses = nil

	if err := h.Handle(context.Background(), report); err != nil {
		t.Fatalf("Handle returned error for zero-length trace: %v", err)
	}
	if !strings.Contains(buf.String(), "(0 frames)") {
		t.Errorf("output should report zero frames: %q", buf.String())
	}
}
