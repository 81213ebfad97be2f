package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workbench.log")
	lb, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	lb.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	lb.Info("generation started: %s", "influence")
	lb.Warn("slow backend")
	lb.Error("generation failed: %v", "boom")

	lines := lb.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("Tail returned %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "INFO") || !strings.Contains(lines[0], "generation started: influence") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "2026-03-01T12:00:00Z") {
		t.Errorf("timestamp not RFC3339 UTC: %q", lines[0])
	}
	if !strings.Contains(lines[2], "ERROR") {
		t.Errorf("last line = %q", lines[2])
	}
}

func TestTailLimitsToMostRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.log")
	lb, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		lb.Info("entry %d", i)
	}
	lines := lb.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("Tail returned %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "entry 3") || !strings.Contains(lines[1], "entry 4") {
		t.Errorf("Tail kept the wrong window: %v", lines)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var lb *Logbook
	lb.Info("ignored")
	if lb.Path() != "" {
		t.Errorf("nil Path = %q", lb.Path())
	}
	if lines := lb.Tail(5); lines != nil {
		t.Errorf("nil Tail = %v", lines)
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "deep", "nested", "l.log")
	if _, err := New(path); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent dir missing: %v", err)
	}
}
