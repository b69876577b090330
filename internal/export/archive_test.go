package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "nested", "archive.db"))
	if err != nil {
		t.Fatalf("OpenArchive() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveSaveGet(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	e := &Entry{Checklist: sampleChecklist(t), SessionID: "s1"}
	if err := a.Save(ctx, e); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("Save() did not fill id and time: %+v", e)
	}
	if e.Campaign != "Summer Push" {
		t.Errorf("Campaign = %q, want Summer Push", e.Campaign)
	}

	got, err := a.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SessionID != "s1" || got.Checklist.Totals != e.Checklist.Totals {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := a.Get(ctx, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrEntryNotFound", err)
	}
}

func TestArchiveListDelete(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Spring Reset", "Summer Push", "summer encore"} {
		e := &Entry{Campaign: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := a.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := a.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].Campaign != "summer encore" {
		t.Fatalf("List() order wrong: %v", campaigns(all))
	}

	summer, _ := a.List(ctx, ListFilter{Search: "SUMMER"})
	if len(summer) != 2 {
		t.Errorf("List(search) = %v, want 2 entries", campaigns(summer))
	}

	page, _ := a.List(ctx, ListFilter{Offset: 1, Limit: 1})
	if len(page) != 1 || page[0].Campaign != "Summer Push" {
		t.Errorf("List(page) = %v", campaigns(page))
	}
	if past, _ := a.List(ctx, ListFilter{Offset: 5}); len(past) != 0 {
		t.Errorf("List(offset past end) = %v", campaigns(past))
	}

	if err := a.Delete(ctx, all[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := a.Delete(ctx, all[0].ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}

	n, err := a.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v, want 2", n, err)
	}
}

func TestArchiveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive() error = %v", err)
	}
	a.Save(ctx, &Entry{Campaign: "Kept"})
	a.Close()

	a, err = OpenArchive(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer a.Close()

	if n, _ := a.Count(ctx); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}

func campaigns(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Campaign
	}
	return out
}
