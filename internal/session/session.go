// Package session holds planning sessions: one campaign and its weekly plan
// per session, mutated through synchronous methods
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/plan"
)

// State is the full planning state of a session
type State struct {
	Campaign plan.CampaignConfig
	Plan     plan.WeeklyPlan
}

func (s State) clone() State {
	return State{
		Campaign: s.Campaign.Clone(),
		Plan:     s.Plan.Clone(),
	}
}

// validate checks the campaign and that the plan holds exactly weeks
// 1..DurationWeeks
func (s State) validate() error {
	if err := s.Campaign.Validate(); err != nil {
		return err
	}
	if n := s.Plan.Len(); n != s.Campaign.DurationWeeks {
		return fmt.Errorf("plan has %d weeks, campaign has %d: %w", n, s.Campaign.DurationWeeks, plan.ErrWeekOutOfRange)
	}
	for w := 1; w <= s.Campaign.DurationWeeks; w++ {
		if _, ok := s.Plan.Week(w); !ok {
			return fmt.Errorf("week %d missing from plan: %w", w, plan.ErrWeekOutOfRange)
		}
	}
	return nil
}

// NewState returns an empty campaign of the given length with its plan
func NewState(weeks int) State {
	cfg := plan.NewCampaignConfig(weeks)
	return State{
		Campaign: cfg,
		Plan:     plan.NewWeeklyPlan(cfg.DurationWeeks),
	}
}

// Session is one user's planning state. Every mutation works on a copy and
// swaps it in, so readers never observe a half-applied change.
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.RWMutex
	state     State
	updatedAt time.Time
	now       func() time.Time
}

func newSession(id string, state State, now func() time.Time) *Session {
	t := now()
	return &Session{
		id:        id,
		createdAt: t,
		updatedAt: t,
		state:     state,
		now:       now,
	}
}

// Info summarises a session
type Info struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DurationWeeks int       `json:"duration_weeks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Info returns a summary of the session
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{
		ID:            s.id,
		Name:          s.state.Campaign.Name,
		DurationWeeks: s.state.Campaign.DurationWeeks,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

func (s *Session) lastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Session) mutate(op string, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		metrics.IncPlanError(op, errorReason(err))
		return err
	}

	s.state = next
	s.updatedAt = s.now()
	metrics.IncPlanMutation(op)
	return nil
}

// Import swaps in a whole new state, typically decoded from a plan document,
// after validating it
func (s *Session) Import(st State) error {
	return s.mutate("import", func(cur *State) error {
		if err := st.validate(); err != nil {
			return err
		}
		*cur = st.clone()
		return nil
	})
}

// SetName renames the campaign
func (s *Session) SetName(name string) error {
	return s.mutate("set_name", func(st *State) error {
		st.Campaign.Name = name
		return nil
	})
}

// SetMainOffer changes the main offer. Emails already promoting the old
// title keep it.
func (s *Session) SetMainOffer(title string) error {
	return s.mutate("set_main_offer", func(st *State) error {
		st.Campaign.MainOffer = title
		return nil
	})
}

// SetDuration changes the campaign length and reconciles the weekly plan
func (s *Session) SetDuration(weeks int) error {
	return s.mutate("set_duration", func(st *State) error {
		if err := st.Campaign.SetDuration(weeks); err != nil {
			return err
		}
		st.Plan = plan.Reconcile(st.Plan, weeks)
		return nil
	})
}

// CampaignUpdate holds optional campaign field changes. Nil fields are left alone.
type CampaignUpdate struct {
	Name          *string `json:"name,omitempty"`
	DurationWeeks *int    `json:"duration_weeks,omitempty"`
	MainOffer     *string `json:"main_offer,omitempty"`
}

// UpdateCampaign applies every set field of u, or none of them if any is invalid
func (s *Session) UpdateCampaign(u CampaignUpdate) error {
	return s.mutate("update_campaign", func(st *State) error {
		if u.DurationWeeks != nil && *u.DurationWeeks != st.Campaign.DurationWeeks {
			if err := st.Campaign.SetDuration(*u.DurationWeeks); err != nil {
				return err
			}
			st.Plan = plan.Reconcile(st.Plan, *u.DurationWeeks)
		}
		if u.Name != nil {
			st.Campaign.Name = *u.Name
		}
		if u.MainOffer != nil {
			st.Campaign.MainOffer = *u.MainOffer
		}
		return nil
	})
}

// AddContent appends an untitled content piece and returns its index
func (s *Session) AddContent() (int, error) {
	var idx int
	err := s.mutate("add_content", func(st *State) error {
		idx = st.Campaign.AddContent()
		return nil
	})
	return idx, err
}

// UpdateContent changes one field of a content piece and returns the piece
// as it was stored
func (s *Session) UpdateContent(index int, field plan.ContentField, value string) (plan.SupportingContent, error) {
	var updated plan.SupportingContent
	err := s.mutate("update_content", func(st *State) error {
		if err := st.Campaign.UpdateContent(index, field, value); err != nil {
			return err
		}
		updated = st.Campaign.SupportingContent[index]
		return nil
	})
	return updated, err
}

// RemoveContent deletes a content piece
func (s *Session) RemoveContent(index int) error {
	return s.mutate("remove_content", func(st *State) error {
		return st.Campaign.RemoveContent(index)
	})
}

// AddEmail appends an Announcement promoting the current main offer to the
// (week, brand) list and returns its index
func (s *Session) AddEmail(week int, b plan.Brand) (int, error) {
	var idx int
	err := s.mutate("add_email", func(st *State) error {
		var err error
		idx, err = st.Plan.AppendEmail(week, b, plan.ScheduledEmail{
			Type:     plan.EmailAnnouncement,
			Promotes: st.Campaign.MainOffer,
		})
		return err
	})
	return idx, err
}

// UpdateEmail changes one field of a scheduled email and returns the email
// as it was stored
func (s *Session) UpdateEmail(week int, b plan.Brand, index int, field plan.EmailField, value string) (plan.ScheduledEmail, error) {
	var updated plan.ScheduledEmail
	err := s.mutate("update_email", func(st *State) error {
		if err := st.Plan.UpdateEmail(week, b, index, field, value); err != nil {
			return err
		}
		ws, _ := st.Plan.Week(week)
		updated = ws.Emails(b)[index]
		return nil
	})
	return updated, err
}

// RemoveEmail deletes a scheduled email
func (s *Session) RemoveEmail(week int, b plan.Brand, index int) error {
	return s.mutate("remove_email", func(st *State) error {
		return st.Plan.RemoveEmail(week, b, index)
	})
}

// Ads returns the ad requirements of the current state
func (s *Session) Ads() plan.AdRequirements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return plan.CalculateAds(s.state.Campaign)
}

// Checklist returns the production checklist of the current state
func (s *Session) Checklist() plan.Checklist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return plan.BuildChecklist(s.state.Campaign, s.state.Plan)
}

// PromoteOptions returns the titles an email can currently promote
func (s *Session) PromoteOptions() []plan.PromoteOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Campaign.PromoteOptions()
}

// Orphans returns emails whose promoted title no longer exists
func (s *Session) Orphans() []plan.EmailAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return plan.Orphans(s.state.Campaign, s.state.Plan)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, plan.ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, plan.ErrWeekOutOfRange):
		return "week_out_of_range"
	case errors.Is(err, plan.ErrDuplicateWeek):
		return "duplicate_week"
	case errors.Is(err, plan.ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, plan.ErrUnknownBrand),
		errors.Is(err, plan.ErrUnknownEmailType),
		errors.Is(err, plan.ErrUnknownContentType),
		errors.Is(err, plan.ErrUnknownField):
		return "invalid_value"
	}
	return "other"
}
