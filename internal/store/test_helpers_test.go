package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/flowc/internal/metrics"
)

// createTestArchive opens a fresh archive in a temp dir.
func createTestArchive(t *testing.T) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestRecord creates a successful record with minimal fields.
func createTestRecord(id, fingerprint string) metrics.CompilationRecord {
	return metrics.CompilationRecord{
		CompilationID:     id,
		Success:           true,
		StepCount:         3,
		CompilationTimeMS: 1.5,
		Stage:             "done",
		Features:          []string{"filters"},
		IRFingerprint:     fingerprint,
		RecordedAt:        testTime,
	}
}
