package spool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

func TestSpoolHandler_WritesReportFile(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	report := crashrelay.Report{
		EventID:       "11111111-2222-3333-4444-555555555555",
		Timestamp:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		ExceptionType: "*fs.PathError",
		Message:       "disk gone",
		Addresses:     crashrelay.StackTrace{0x4a2f10, 0x4a1e00},
	}

	require.NoError(t, h.Handle(context.Background(), report))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "report-11111111-2222-3333-4444-555555555555.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var wire crashrelay.WireReport
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Equal(t, "*fs.PathError", wire.ExceptionType)
	require.Equal(t, "disk gone", wire.Message)
	require.Equal(t, []string{"0x4a2f10", "0x4a1e00"}, wire.Addresses)
}

func TestSpoolHandler_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "spool")
	h := NewHandler(dir)

	err := h.Handle(context.Background(), crashrelay.Report{EventID: "evt-1"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSpoolHandler_MissingEventID_GetsName(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	require.NoError(t, h.Handle(context.Background(), crashrelay.Report{Message: "anonymous"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, strings.HasPrefix(entries[0].Name(), "report-"))
	require.True(t, strings.HasSuffix(entries[0].Name(), Suffix))
}

func TestSpoolHandler_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Handle(context.Background(), crashrelay.Report{Message: "x"}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stray temp file %s", e.Name())
	}
}
