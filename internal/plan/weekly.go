package plan

import (
	"fmt"
	"sort"
)

// WeekSchedule holds the emails scheduled in one week for each brand
type WeekSchedule struct {
	Week int              `json:"week" yaml:"week"`
	COW  []ScheduledEmail `json:"cow" yaml:"cow"`
	WBI  []ScheduledEmail `json:"wbi" yaml:"wbi"`
}

// Emails returns the list for brand b
func (w WeekSchedule) Emails(b Brand) []ScheduledEmail {
	if b == BrandWBI {
		return w.WBI
	}
	return w.COW
}

func (w *WeekSchedule) list(b Brand) *[]ScheduledEmail {
	if b == BrandWBI {
		return &w.WBI
	}
	return &w.COW
}

func (w WeekSchedule) clone() WeekSchedule {
	out := WeekSchedule{
		Week: w.Week,
		COW:  make([]ScheduledEmail, len(w.COW)),
		WBI:  make([]ScheduledEmail, len(w.WBI)),
	}
	copy(out.COW, w.COW)
	copy(out.WBI, w.WBI)
	return out
}

// WeeklyPlan maps week numbers to the emails scheduled that week.
// It always holds exactly one entry per week in 1..duration.
type WeeklyPlan struct {
	weeks map[int]*WeekSchedule
}

// NewWeeklyPlan returns a plan with empty lists for weeks 1..weeks
func NewWeeklyPlan(weeks int) WeeklyPlan {
	return Reconcile(WeeklyPlan{}, weeks)
}

// Reconcile returns a plan covering weeks 1..weeks. Weeks already in p keep
// their emails, new weeks start empty and weeks past the new end are dropped.
// p itself is left untouched.
func Reconcile(p WeeklyPlan, weeks int) WeeklyPlan {
	next := WeeklyPlan{weeks: make(map[int]*WeekSchedule, weeks)}
	for i := 1; i <= weeks; i++ {
		if ws, ok := p.weeks[i]; ok {
			c := ws.clone()
			next.weeks[i] = &c
			continue
		}
		next.weeks[i] = &WeekSchedule{
			Week: i,
			COW:  []ScheduledEmail{},
			WBI:  []ScheduledEmail{},
		}
	}
	return next
}

// PlanFromWeeks builds a plan of the given length from explicit week
// entries. Missing weeks are created empty; entries outside 1..weeks are
// rejected.
func PlanFromWeeks(weeks int, entries []WeekSchedule) (WeeklyPlan, error) {
	if !ValidDuration(weeks) {
		return WeeklyPlan{}, fmt.Errorf("%w: %d", ErrInvalidDuration, weeks)
	}

	p := NewWeeklyPlan(weeks)
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if _, ok := p.weeks[e.Week]; !ok {
			return WeeklyPlan{}, fmt.Errorf("week %d: %w", e.Week, ErrWeekOutOfRange)
		}
		if seen[e.Week] {
			return WeeklyPlan{}, fmt.Errorf("week %d: %w", e.Week, ErrDuplicateWeek)
		}
		seen[e.Week] = true
		for _, b := range Brands {
			for i, email := range e.Emails(b) {
				if !email.Type.Valid() {
					return WeeklyPlan{}, fmt.Errorf("week %d %s email %d: %w: %q",
						e.Week, b.Key(), i, ErrUnknownEmailType, email.Type)
				}
			}
		}
		c := e.clone()
		p.weeks[e.Week] = &c
	}
	return p, nil
}

// Len returns the number of weeks in the plan
func (p WeeklyPlan) Len() int {
	return len(p.weeks)
}

// WeekNumbers returns the week numbers in ascending numeric order
func (p WeeklyPlan) WeekNumbers() []int {
	nums := make([]int, 0, len(p.weeks))
	for n := range p.weeks {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Week returns a copy of week n
func (p WeeklyPlan) Week(n int) (WeekSchedule, bool) {
	ws, ok := p.weeks[n]
	if !ok {
		return WeekSchedule{}, false
	}
	return ws.clone(), true
}

// Weeks returns copies of every week in ascending order
func (p WeeklyPlan) Weeks() []WeekSchedule {
	out := make([]WeekSchedule, 0, len(p.weeks))
	for _, n := range p.WeekNumbers() {
		out = append(out, p.weeks[n].clone())
	}
	return out
}

// Clone returns a deep copy
func (p WeeklyPlan) Clone() WeeklyPlan {
	out := WeeklyPlan{weeks: make(map[int]*WeekSchedule, len(p.weeks))}
	for n, ws := range p.weeks {
		c := ws.clone()
		out.weeks[n] = &c
	}
	return out
}

// EmailCount returns the number of emails scheduled for brand b across all weeks
func (p WeeklyPlan) EmailCount(b Brand) int {
	n := 0
	for _, ws := range p.weeks {
		n += len(ws.Emails(b))
	}
	return n
}

func (p WeeklyPlan) brandList(week int, b Brand) (*[]ScheduledEmail, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrand, b)
	}
	ws, ok := p.weeks[week]
	if !ok {
		return nil, fmt.Errorf("week %d: %w", week, ErrWeekOutOfRange)
	}
	return ws.list(b), nil
}

// AppendEmail adds email to the end of the (week, brand) list and returns its index
func (p WeeklyPlan) AppendEmail(week int, b Brand, email ScheduledEmail) (int, error) {
	list, err := p.brandList(week, b)
	if err != nil {
		return 0, err
	}
	if !email.Type.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEmailType, email.Type)
	}
	*list = append(*list, email)
	return len(*list) - 1, nil
}

// UpdateEmail replaces one field of the email at (week, brand, index)
func (p WeeklyPlan) UpdateEmail(week int, b Brand, index int, field EmailField, value string) error {
	list, err := p.brandList(week, b)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*list) {
		return fmt.Errorf("week %d %s email %d: %w", week, b.Key(), index, ErrIndexOutOfRange)
	}

	email := &(*list)[index]
	switch field {
	case EmailFieldType:
		t, err := ParseEmailType(value)
		if err != nil {
			return err
		}
		email.Type = t
	case EmailFieldPromotes:
		email.Promotes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// RemoveEmail deletes the email at (week, brand, index); later emails shift down
func (p WeeklyPlan) RemoveEmail(week int, b Brand, index int) error {
	list, err := p.brandList(week, b)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*list) {
		return fmt.Errorf("week %d %s email %d: %w", week, b.Key(), index, ErrIndexOutOfRange)
	}
	*list = append((*list)[:index:index], (*list)[index+1:]...)
	return nil
}
