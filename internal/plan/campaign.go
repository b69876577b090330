package plan

import "fmt"

// DefaultDuration is the campaign length in weeks for a new campaign
const DefaultDuration = 8

// AllowedDurations lists the campaign lengths a campaign may have
var AllowedDurations = []int{4, 6, 8}

// ValidDuration reports whether weeks is an allowed campaign length
func ValidDuration(weeks int) bool {
	for _, d := range AllowedDurations {
		if weeks == d {
			return true
		}
	}
	return false
}

// CampaignConfig is the campaign setup the schedule and checklist derive from
type CampaignConfig struct {
	Name              string              `json:"name" yaml:"name"`
	DurationWeeks     int                 `json:"duration_weeks" yaml:"duration_weeks"`
	MainOffer         string              `json:"main_offer" yaml:"main_offer"`
	SupportingContent []SupportingContent `json:"supporting_content" yaml:"supporting_content"`
}

// NewCampaignConfig returns an empty campaign of the given length.
// An invalid length falls back to DefaultDuration.
func NewCampaignConfig(weeks int) CampaignConfig {
	if !ValidDuration(weeks) {
		weeks = DefaultDuration
	}
	return CampaignConfig{
		DurationWeeks:     weeks,
		SupportingContent: []SupportingContent{},
	}
}

// Clone returns a deep copy
func (c CampaignConfig) Clone() CampaignConfig {
	out := c
	out.SupportingContent = make([]SupportingContent, len(c.SupportingContent))
	copy(out.SupportingContent, c.SupportingContent)
	return out
}

// Validate checks the duration and the enumerations of every content piece
func (c CampaignConfig) Validate() error {
	if !ValidDuration(c.DurationWeeks) {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, c.DurationWeeks)
	}
	for i, sc := range c.SupportingContent {
		if !sc.Brand.Valid() {
			return fmt.Errorf("supporting_content[%d]: %w: %q", i, ErrUnknownBrand, sc.Brand)
		}
		if !sc.Type.Valid() {
			return fmt.Errorf("supporting_content[%d]: %w: %q", i, ErrUnknownContentType, sc.Type)
		}
	}
	return nil
}

// SetDuration changes the campaign length. The weekly plan must be
// reconciled by the caller afterwards.
func (c *CampaignConfig) SetDuration(weeks int) error {
	if !ValidDuration(weeks) {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, weeks)
	}
	c.DurationWeeks = weeks
	return nil
}

// AddContent appends an untitled COW blog and returns its index
func (c *CampaignConfig) AddContent() int {
	c.SupportingContent = append(c.SupportingContent, SupportingContent{
		Brand: BrandCOW,
		Type:  ContentBlog,
	})
	return len(c.SupportingContent) - 1
}

// UpdateContent replaces one field of the content piece at index
func (c *CampaignConfig) UpdateContent(index int, field ContentField, value string) error {
	if index < 0 || index >= len(c.SupportingContent) {
		return fmt.Errorf("supporting content %d: %w", index, ErrIndexOutOfRange)
	}

	sc := &c.SupportingContent[index]
	switch field {
	case ContentFieldTitle:
		sc.Title = value
	case ContentFieldBrand:
		b, err := ParseBrand(value)
		if err != nil {
			return err
		}
		sc.Brand = b
	case ContentFieldType:
		t, err := ParseContentType(value)
		if err != nil {
			return err
		}
		sc.Type = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// RemoveContent deletes the content piece at index, keeping the order of the rest
func (c *CampaignConfig) RemoveContent(index int) error {
	if index < 0 || index >= len(c.SupportingContent) {
		return fmt.Errorf("supporting content %d: %w", index, ErrIndexOutOfRange)
	}
	c.SupportingContent = append(c.SupportingContent[:index:index], c.SupportingContent[index+1:]...)
	return nil
}

// TitledContent returns the content pieces with a non-empty title, in order
func (c CampaignConfig) TitledContent() []SupportingContent {
	out := make([]SupportingContent, 0, len(c.SupportingContent))
	for _, sc := range c.SupportingContent {
		if sc.Title != "" {
			out = append(out, sc)
		}
	}
	return out
}

// PromoteOption is a title an email can promote
type PromoteOption struct {
	Title     string `json:"title"`
	MainOffer bool   `json:"main_offer"`
}

// PromoteOptions lists the titles an email may reference: the main offer
// first, then titled supporting content in order. Repeated titles are listed once.
func (c CampaignConfig) PromoteOptions() []PromoteOption {
	seen := make(map[string]bool)
	var out []PromoteOption

	if c.MainOffer != "" {
		seen[c.MainOffer] = true
		out = append(out, PromoteOption{Title: c.MainOffer, MainOffer: true})
	}
	for _, sc := range c.TitledContent() {
		if seen[sc.Title] {
			continue
		}
		seen[sc.Title] = true
		out = append(out, PromoteOption{Title: sc.Title})
	}
	return out
}
