package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/plan"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// StoreConfig contains session store settings
type StoreConfig struct {
	DefaultDuration int
	TTL             time.Duration // 0 = sessions never expire
	MaxSessions     int           // 0 = unlimited
	CleanupInterval time.Duration
}

// Store keeps sessions in memory and drops the ones left idle past the TTL
type Store struct {
	cfg    StoreConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	wg   sync.WaitGroup
	done chan struct{}
}

// NewStore creates an empty store
func NewStore(cfg StoreConfig, logger *slog.Logger) *Store {
	if !plan.ValidDuration(cfg.DefaultDuration) {
		cfg.DefaultDuration = plan.DefaultDuration
	}
	return &Store{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

// Create starts a new session with an empty campaign
func (s *Store) Create() (*Session, error) {
	return s.CreateWithState(NewState(s.cfg.DefaultDuration))
}

// CreateWithState starts a new session from an existing state
func (s *Store) CreateWithState(st State) (*Session, error) {
	if err := st.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, s.cfg.MaxSessions)
	}

	sess := newSession(uuid.New().String(), st.clone(), s.now)
	s.sessions[sess.id] = sess

	metrics.IncSessionsCreated()
	metrics.SetSessionsActive(len(s.sessions))
	s.logger.Debug("session created", "id", sess.id, "duration_weeks", st.Campaign.DurationWeeks)

	return sess, nil
}

// Get returns the session with the given id
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete drops a session
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	metrics.SetSessionsActive(len(s.sessions))
	s.logger.Debug("session deleted", "id", id)
	return nil
}

// List returns a summary of every session, oldest first
func (s *Store) List() []Info {
	s.mu.RLock()
	out := make([]Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Info())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went
func (s *Store) Sweep() int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastUsed().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		metrics.IncSessionsExpired(removed)
		metrics.SetSessionsActive(len(s.sessions))
		s.logger.Info("expired idle sessions", "count", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Start runs the sweeper until ctx is done or Stop is called
func (s *Store) Start(ctx context.Context) {
	if s.cfg.TTL <= 0 || s.cfg.CleanupInterval <= 0 {
		return
	}

	s.wg.Add(1)
	go s.sweepLoop(ctx)

	s.logger.Info("session sweeper started",
		"ttl", s.cfg.TTL,
		"interval", s.cfg.CleanupInterval,
	)
}

// Stop stops the sweeper and waits for it to finish
func (s *Store) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *Store) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
