package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedSessions int

func (f fixedSessions) Len() int { return int(f) }

type fixedArchive int

func (f fixedArchive) Count(ctx context.Context) (int, error) { return int(f), nil }

func TestCollectorCollect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	if err := os.WriteFile(path, make([]byte, 2048), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	m := New()
	c := NewCollector(m, fixedSessions(5), fixedArchive(2), path, time.Hour)
	c.Collect(context.Background())

	if got := testutil.ToFloat64(m.SessionsActive); got != 5 {
		t.Errorf("sessions active = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.ArchiveEntries); got != 2 {
		t.Errorf("archive entries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StorageUsedBytes); got != 2048 {
		t.Errorf("storage bytes = %v, want 2048", got)
	}
	if got := testutil.ToFloat64(m.Goroutines); got < 1 {
		t.Errorf("goroutines = %v", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	m := New()
	c := NewCollector(m, fixedSessions(1), nil, "", 10*time.Millisecond)
	c.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	if got := testutil.ToFloat64(m.SessionsActive); got != 1 {
		t.Errorf("sessions active = %v, want 1", got)
	}
}
