package plan

import "fmt"

// EmailAsset is a scheduled email as it appears in the checklist
type EmailAsset struct {
	ID       string    `json:"id" yaml:"id"`
	Week     int       `json:"week" yaml:"week"`
	Type     EmailType `json:"type" yaml:"type"`
	Promotes string    `json:"promotes" yaml:"promotes"`
	// Resolved is false when Promotes matches neither the main offer nor
	// any titled content piece.
	Resolved bool `json:"resolved" yaml:"resolved"`
}

// AdAsset is a promoted item and the variants it needs
type AdAsset struct {
	Title      string `json:"title" yaml:"title"`
	Variations int    `json:"variations" yaml:"variations"`
}

// BrandAssets is everything one brand has to produce
type BrandAssets struct {
	Brand   Brand               `json:"brand" yaml:"brand"`
	Name    string              `json:"name" yaml:"name"`
	Emails  []EmailAsset        `json:"emails" yaml:"emails"`
	Ads     []AdAsset           `json:"ads" yaml:"ads"`
	Content []SupportingContent `json:"content" yaml:"content"`
}

// Totals sums the checklist
type Totals struct {
	Emails  int `json:"emails" yaml:"emails"`
	Ads     int `json:"ads" yaml:"ads"`
	Content int `json:"content" yaml:"content"`
	Grand   int `json:"grand" yaml:"grand"`
}

// Checklist is the production checklist of a campaign, partitioned by brand
type Checklist struct {
	Campaign          string              `json:"campaign" yaml:"campaign"`
	DurationWeeks     int                 `json:"duration_weeks" yaml:"duration_weeks"`
	MainOffer         string              `json:"main_offer" yaml:"main_offer"`
	COW               BrandAssets         `json:"cow" yaml:"cow"`
	WBI               BrandAssets         `json:"wbi" yaml:"wbi"`
	SupportingContent []SupportingContent `json:"supporting_content" yaml:"supporting_content"`
	Ads               AdRequirements      `json:"ads" yaml:"ads"`
	Totals            Totals              `json:"totals" yaml:"totals"`
}

// Brand returns the assets of brand b
func (c Checklist) Brand(b Brand) BrandAssets {
	if b == BrandWBI {
		return c.WBI
	}
	return c.COW
}

// EmailID returns the checklist id of the email at (week, brand, index)
func EmailID(b Brand, week, index int) string {
	return fmt.Sprintf("%s-w%d-%d", b.Key(), week, index)
}

// BuildChecklist aggregates emails, ads and supporting content of a campaign.
// Emails are listed in ascending week order and, within a week, in list order.
func BuildChecklist(cfg CampaignConfig, p WeeklyPlan) Checklist {
	titled := cfg.TitledContent()
	known := make(map[string]bool, len(titled)+1)
	if cfg.MainOffer != "" {
		known[cfg.MainOffer] = true
	}
	for _, sc := range titled {
		known[sc.Title] = true
	}

	c := Checklist{
		Campaign:          cfg.Name,
		DurationWeeks:     cfg.DurationWeeks,
		MainOffer:         cfg.MainOffer,
		SupportingContent: titled,
		Ads:               CalculateAds(cfg),
	}

	assets := make(map[Brand]*BrandAssets, len(Brands))
	for _, b := range Brands {
		assets[b] = &BrandAssets{
			Brand:   b,
			Name:    b.Name(),
			Emails:  []EmailAsset{},
			Ads:     []AdAsset{},
			Content: []SupportingContent{},
		}
	}

	for _, week := range p.WeekNumbers() {
		ws := p.weeks[week]
		for _, b := range Brands {
			for i, email := range ws.Emails(b) {
				assets[b].Emails = append(assets[b].Emails, EmailAsset{
					ID:       EmailID(b, week, i),
					Week:     week,
					Type:     email.Type,
					Promotes: email.Promotes,
					Resolved: known[email.Promotes],
				})
			}
		}
	}

	for _, item := range PromotedItems(cfg) {
		a, ok := assets[item.Brand]
		if !ok {
			continue
		}
		a.Ads = append(a.Ads, AdAsset{Title: item.Title, Variations: AdVariations})
	}

	for _, sc := range titled {
		if a, ok := assets[sc.Brand]; ok {
			a.Content = append(a.Content, sc)
		}
	}

	c.COW = *assets[BrandCOW]
	c.WBI = *assets[BrandWBI]

	c.Totals.Emails = len(c.COW.Emails) + len(c.WBI.Emails)
	c.Totals.Ads = c.Ads.Total
	c.Totals.Content = len(titled)
	c.Totals.Grand = c.Totals.Emails + c.Totals.Ads + c.Totals.Content

	return c
}

// Orphans returns the scheduled emails whose promoted title no longer
// matches the main offer or any titled content piece
func Orphans(cfg CampaignConfig, p WeeklyPlan) []EmailAsset {
	c := BuildChecklist(cfg, p)
	var out []EmailAsset
	for _, b := range Brands {
		for _, e := range c.Brand(b).Emails {
			if !e.Resolved {
				out = append(out, e)
			}
		}
	}
	return out
}
