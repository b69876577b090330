// Package plan holds the campaign planning model: campaign configuration,
// the weekly email schedule and the derived ad requirements and checklist
package plan

import (
	"fmt"
	"strings"
)

// Brand is one of the two marketing identities a campaign runs under
type Brand string

const (
	BrandCOW Brand = "COW"
	BrandWBI Brand = "WBI"
)

// Brands lists every brand in display order
var Brands = []Brand{BrandCOW, BrandWBI}

// Valid reports whether b is a known brand
func (b Brand) Valid() bool {
	return b == BrandCOW || b == BrandWBI
}

// Name returns the brand's full name
func (b Brand) Name() string {
	switch b {
	case BrandCOW:
		return "Champions of Wellness"
	case BrandWBI:
		return "Well-Being Index"
	}
	return string(b)
}

// Key returns the lower-case form used in ids and URLs
func (b Brand) Key() string {
	return strings.ToLower(string(b))
}

// ParseBrand accepts "COW", "cow", "WBI" or "wbi"
func ParseBrand(s string) (Brand, error) {
	for _, b := range Brands {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBrand, s)
}

// EmailType is the kind of promotional email
type EmailType string

const (
	EmailAnnouncement EmailType = "Announcement"
	EmailReminder     EmailType = "Reminder"
	EmailInvite       EmailType = "Invite"
	EmailLastChance   EmailType = "LastChance"
	EmailBlogPromo    EmailType = "BlogPromo"
)

// EmailTypes lists every email type in display order
var EmailTypes = []EmailType{
	EmailAnnouncement,
	EmailReminder,
	EmailInvite,
	EmailLastChance,
	EmailBlogPromo,
}

// Valid reports whether t is a known email type
func (t EmailType) Valid() bool {
	for _, et := range EmailTypes {
		if t == et {
			return true
		}
	}
	return false
}

// Label returns the human readable form ("Last Chance", "Blog Promo")
func (t EmailType) Label() string {
	switch t {
	case EmailLastChance:
		return "Last Chance"
	case EmailBlogPromo:
		return "Blog Promo"
	}
	return string(t)
}

// ParseEmailType accepts either the identifier or the label of an email type,
// ignoring case
func ParseEmailType(s string) (EmailType, error) {
	for _, et := range EmailTypes {
		if strings.EqualFold(s, string(et)) || strings.EqualFold(s, et.Label()) {
			return et, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEmailType, s)
}

// ContentType is the format of a supporting content piece
type ContentType string

const (
	ContentBlog        ContentType = "Blog"
	ContentVideo       ContentType = "Video"
	ContentWebinar     ContentType = "Webinar"
	ContentGuide       ContentType = "Guide"
	ContentInfographic ContentType = "Infographic"
)

// ContentTypes lists every content type in display order
var ContentTypes = []ContentType{
	ContentBlog,
	ContentVideo,
	ContentWebinar,
	ContentGuide,
	ContentInfographic,
}

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// ParseContentType parses a content type name, ignoring case
func ParseContentType(s string) (ContentType, error) {
	for _, ct := range ContentTypes {
		if strings.EqualFold(s, string(ct)) {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}

// ContentField names an editable field of a supporting content piece
type ContentField string

const (
	ContentFieldTitle ContentField = "title"
	ContentFieldBrand ContentField = "brand"
	ContentFieldType  ContentField = "type"
)

// EmailField names an editable field of a scheduled email
type EmailField string

const (
	EmailFieldType     EmailField = "type"
	EmailFieldPromotes EmailField = "promotes"
)

// SupportingContent is a secondary content piece owned by one brand
type SupportingContent struct {
	Title string      `json:"title" yaml:"title"`
	Brand Brand       `json:"brand" yaml:"brand"`
	Type  ContentType `json:"type" yaml:"type"`
}

// ScheduledEmail is one promotional email in a week's brand list.
// Promotes holds a title by value; nothing keeps it in sync with the
// campaign when titles change.
type ScheduledEmail struct {
	Type     EmailType `json:"type" yaml:"type"`
	Promotes string    `json:"promotes" yaml:"promotes"`
}
