package plan

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseEnums(t *testing.T) {
	if b, err := ParseBrand("cow"); err != nil || b != BrandCOW {
		t.Errorf("ParseBrand(cow) = %v, %v", b, err)
	}
	if b, err := ParseBrand("WBI"); err != nil || b != BrandWBI {
		t.Errorf("ParseBrand(WBI) = %v, %v", b, err)
	}
	if _, err := ParseBrand("ACME"); !errors.Is(err, ErrUnknownBrand) {
		t.Errorf("ParseBrand(ACME) error = %v", err)
	}

	tests := []struct {
		in   string
		want EmailType
	}{
		{"Announcement", EmailAnnouncement},
		{"LastChance", EmailLastChance},
		{"Last Chance", EmailLastChance},
		{"Blog Promo", EmailBlogPromo},
		{"last chance", EmailLastChance},
		{"REMINDER", EmailReminder},
	}
	for _, tt := range tests {
		got, err := ParseEmailType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseEmailType(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{"Blog", "blog", "BLOG"} {
		if ct, err := ParseContentType(in); err != nil || ct != ContentBlog {
			t.Errorf("ParseContentType(%q) = %v, %v", in, ct, err)
		}
	}
	if ct, err := ParseContentType("infographic"); err != nil || ct != ContentInfographic {
		t.Errorf("ParseContentType(infographic) = %v, %v", ct, err)
	}
	if _, err := ParseContentType("Podcast"); !errors.Is(err, ErrUnknownContentType) {
		t.Errorf("ParseContentType(Podcast) error = %v", err)
	}
	if BrandCOW.Name() != "Champions of Wellness" || BrandWBI.Name() != "Well-Being Index" {
		t.Error("unexpected brand names")
	}
}

func TestSetDuration(t *testing.T) {
	cfg := NewCampaignConfig(0)
	if cfg.DurationWeeks != DefaultDuration {
		t.Errorf("DurationWeeks = %d, want %d", cfg.DurationWeeks, DefaultDuration)
	}

	for _, weeks := range []int{0, 3, 5, 7, 10, -4} {
		if err := cfg.SetDuration(weeks); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("SetDuration(%d) error = %v, want ErrInvalidDuration", weeks, err)
		}
	}
	if cfg.DurationWeeks != DefaultDuration {
		t.Errorf("rejected duration changed state: %d", cfg.DurationWeeks)
	}

	if err := cfg.SetDuration(6); err != nil {
		t.Fatalf("SetDuration(6) error = %v", err)
	}
	if cfg.DurationWeeks != 6 {
		t.Errorf("DurationWeeks = %d, want 6", cfg.DurationWeeks)
	}
}

func TestContentOperations(t *testing.T) {
	cfg := NewCampaignConfig(4)

	idx := cfg.AddContent()
	if idx != 0 {
		t.Errorf("AddContent() = %d, want 0", idx)
	}
	if cfg.SupportingContent[0] != (SupportingContent{Brand: BrandCOW, Type: ContentBlog}) {
		t.Errorf("new content = %+v", cfg.SupportingContent[0])
	}

	cfg.AddContent()
	cfg.AddContent()

	steps := []struct {
		index int
		field ContentField
		value string
	}{
		{0, ContentFieldTitle, "Guide1"},
		{0, ContentFieldType, "Guide"},
		{1, ContentFieldTitle, "Video1"},
		{1, ContentFieldBrand, "WBI"},
		{1, ContentFieldType, "Video"},
		{2, ContentFieldTitle, "Blog1"},
	}
	for _, s := range steps {
		if err := cfg.UpdateContent(s.index, s.field, s.value); err != nil {
			t.Fatalf("UpdateContent(%d, %s, %s) error = %v", s.index, s.field, s.value, err)
		}
	}

	if err := cfg.RemoveContent(1); err != nil {
		t.Fatalf("RemoveContent() error = %v", err)
	}
	want := []SupportingContent{
		{Title: "Guide1", Brand: BrandCOW, Type: ContentGuide},
		{Title: "Blog1", Brand: BrandCOW, Type: ContentBlog},
	}
	if !reflect.DeepEqual(cfg.SupportingContent, want) {
		t.Errorf("content = %+v, want %+v", cfg.SupportingContent, want)
	}

	if err := cfg.RemoveContent(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveContent(2) error = %v", err)
	}
	if err := cfg.UpdateContent(5, ContentFieldTitle, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("UpdateContent(5) error = %v", err)
	}
	if err := cfg.UpdateContent(0, ContentFieldBrand, "ACME"); !errors.Is(err, ErrUnknownBrand) {
		t.Errorf("UpdateContent(brand ACME) error = %v", err)
	}
	if err := cfg.UpdateContent(0, ContentField("owner"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("UpdateContent(owner) error = %v", err)
	}
}

func TestCampaignCloneIsDeep(t *testing.T) {
	cfg := NewCampaignConfig(4)
	cfg.AddContent()

	c := cfg.Clone()
	c.UpdateContent(0, ContentFieldTitle, "changed")
	c.RemoveContent(0)

	if len(cfg.SupportingContent) != 1 || cfg.SupportingContent[0].Title != "" {
		t.Errorf("original changed through clone: %+v", cfg.SupportingContent)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewCampaignConfig(4)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.SupportingContent = append(cfg.SupportingContent, SupportingContent{Title: "x", Brand: "ACME", Type: ContentBlog})
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownBrand) {
		t.Errorf("Validate() error = %v, want ErrUnknownBrand", err)
	}

	cfg.SupportingContent[0].Brand = BrandWBI
	cfg.SupportingContent[0].Type = "Podcast"
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownContentType) {
		t.Errorf("Validate() error = %v, want ErrUnknownContentType", err)
	}

	cfg = CampaignConfig{DurationWeeks: 5}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Validate() error = %v, want ErrInvalidDuration", err)
	}
}

func TestPromoteOptions(t *testing.T) {
	cfg := CampaignConfig{
		DurationWeeks: 4,
		MainOffer:     "Report",
		SupportingContent: []SupportingContent{
			{Title: "Blog1", Brand: BrandCOW, Type: ContentBlog},
			{Title: "", Brand: BrandWBI, Type: ContentVideo},
			{Title: "Report", Brand: BrandWBI, Type: ContentGuide},
			{Title: "Webinar1", Brand: BrandWBI, Type: ContentWebinar},
		},
	}

	got := cfg.PromoteOptions()
	want := []PromoteOption{
		{Title: "Report", MainOffer: true},
		{Title: "Blog1"},
		{Title: "Webinar1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PromoteOptions() = %+v, want %+v", got, want)
	}

	if opts := NewCampaignConfig(4).PromoteOptions(); len(opts) != 0 {
		t.Errorf("empty campaign options = %+v", opts)
	}
}
