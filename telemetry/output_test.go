package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output is disabled")
	}

	// All methods are nil-safe no-ops.
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesStats(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}

	if err := om.WriteStats(WindowStats{WindowEnd: 2, Stamps: 10, DripSpawns: 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := om.WriteStats(WindowStats{WindowEnd: 4, Stamps: 7}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	text := string(data)

	if strings.Count(text, "window_end") != 1 {
		t.Errorf("expected the header exactly once, got:\n%s", text)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 records, got %d lines", len(lines))
	}
}
