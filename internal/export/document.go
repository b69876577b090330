// Package export converts planning state to and from plan documents,
// renders checklists and archives exported checklists in BoltDB
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/session"
)

// Document is the file representation of a campaign and its weekly plan
type Document struct {
	Campaign plan.CampaignConfig `json:"campaign" yaml:"campaign"`
	Weeks    []plan.WeekSchedule `json:"weeks" yaml:"weeks"`
}

// FromState builds a document from a session state, weeks in ascending order
func FromState(st session.State) Document {
	return Document{
		Campaign: st.Campaign.Clone(),
		Weeks:    st.Plan.Weeks(),
	}
}

// State validates the document and converts it to a session state.
// Brands, content types and email types are normalised, so "cow" and
// "Last Chance" are accepted.
func (d Document) State() (session.State, error) {
	cfg := d.Campaign.Clone()
	if cfg.DurationWeeks == 0 {
		cfg.DurationWeeks = plan.DefaultDuration
	}

	for i := range cfg.SupportingContent {
		sc := &cfg.SupportingContent[i]
		if sc.Brand == "" {
			sc.Brand = plan.BrandCOW
		}
		if sc.Type == "" {
			sc.Type = plan.ContentBlog
		}
		b, err := plan.ParseBrand(string(sc.Brand))
		if err != nil {
			return session.State{}, fmt.Errorf("supporting_content[%d]: %w", i, err)
		}
		ct, err := plan.ParseContentType(string(sc.Type))
		if err != nil {
			return session.State{}, fmt.Errorf("supporting_content[%d]: %w", i, err)
		}
		sc.Brand, sc.Type = b, ct
	}
	if err := cfg.Validate(); err != nil {
		return session.State{}, err
	}

	weeks := make([]plan.WeekSchedule, len(d.Weeks))
	for i, w := range d.Weeks {
		weeks[i] = plan.WeekSchedule{Week: w.Week}
		for _, b := range plan.Brands {
			emails, err := normaliseEmails(w.Emails(b))
			if err != nil {
				return session.State{}, fmt.Errorf("week %d %s: %w", w.Week, b.Key(), err)
			}
			if b == plan.BrandWBI {
				weeks[i].WBI = emails
			} else {
				weeks[i].COW = emails
			}
		}
	}

	p, err := plan.PlanFromWeeks(cfg.DurationWeeks, weeks)
	if err != nil {
		return session.State{}, err
	}

	return session.State{Campaign: cfg, Plan: p}, nil
}

func normaliseEmails(in []plan.ScheduledEmail) ([]plan.ScheduledEmail, error) {
	out := make([]plan.ScheduledEmail, len(in))
	for i, e := range in {
		et, err := plan.ParseEmailType(string(e.Type))
		if err != nil {
			return nil, fmt.Errorf("email %d: %w", i, err)
		}
		out[i] = plan.ScheduledEmail{Type: et, Promotes: e.Promotes}
	}
	return out, nil
}

// Decode parses a document in the given format (json or yaml)
func Decode(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse plan document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse plan document: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %s (documents are json or yaml)", ErrUnknownFormat, format)
	}
	return doc, nil
}

// LoadFile reads a plan document, picking the format from the extension.
// Anything other than .json is read as YAML.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read plan document: %w", err)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Decode(data, format)
}
