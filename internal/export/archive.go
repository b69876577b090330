package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/plan"
)

var bucketChecklists = []byte("checklists")

var ErrEntryNotFound = errors.New("archive entry not found")

// Entry is an archived checklist snapshot
type Entry struct {
	ID        string         `json:"id"`
	Campaign  string         `json:"campaign"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Checklist plan.Checklist `json:"checklist"`
}

// ListFilter contains filters for listing archive entries
type ListFilter struct {
	Limit  int
	Offset int
	Search string // case-insensitive match on campaign name
}

// Archive stores exported checklists in BoltDB
type Archive struct {
	db *bolt.DB
}

// OpenArchive opens or creates the archive database at path
func OpenArchive(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketChecklists)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checklist bucket: %w", err)
	}

	a := &Archive{db: db}
	if n, err := a.Count(context.Background()); err == nil {
		metrics.SetArchiveEntries(n)
	}
	return a, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file path
func (a *Archive) Path() string {
	return a.db.Path()
}

// Save stores a checklist snapshot and fills in its id and creation time
func (a *Archive) Save(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Campaign == "" {
		e.Campaign = e.Checklist.Campaign
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal archive entry: %w", err)
	}

	var count int
	err = a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketChecklists)
		if err := b.Put([]byte(e.ID), data); err != nil {
			return fmt.Errorf("failed to store archive entry: %w", err)
		}
		count = countKeys(b)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.SetArchiveEntries(count)
	return nil
}

// Get returns the entry with the given id
func (a *Archive) Get(ctx context.Context, id string) (*Entry, error) {
	var e *Entry

	err := a.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketChecklists).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		e = &Entry{}
		return json.Unmarshal(data, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns entries newest first
func (a *Archive) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	var entries []*Entry
	search := strings.ToLower(filter.Search)

	err := a.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketChecklists).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(e.Campaign), search) {
				continue
			}
			entries = append(entries, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(entries) {
			return []*Entry{}, nil
		}
		entries = entries[filter.Offset:]
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	return entries, nil
}

// Delete removes an entry
func (a *Archive) Delete(ctx context.Context, id string) error {
	var count int
	err := a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketChecklists)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}
		count = countKeys(b)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.SetArchiveEntries(count)
	return nil
}

// Count returns the number of archived entries
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.View(func(tx *bolt.Tx) error {
		n = countKeys(tx.Bucket(bucketChecklists))
		return nil
	})
	return n, err
}

func countKeys(b *bolt.Bucket) int {
	n := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}
