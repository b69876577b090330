package plan

// AdVariations is the number of creative variants every promoted item needs per brand
const AdVariations = 2

// PromotedItem is a (title, brand) pair that requires advertising
type PromotedItem struct {
	Title string `json:"title" yaml:"title"`
	Brand Brand  `json:"brand" yaml:"brand"`
}

// PromotedItems returns the deduplicated promoted items of a campaign.
// The main offer is promoted under both brands, each titled content piece
// under its own brand. Pairs are compared exactly, without normalisation.
// Order is insertion order: main offer first, then content in sequence.
func PromotedItems(cfg CampaignConfig) []PromotedItem {
	seen := make(map[PromotedItem]struct{})
	var items []PromotedItem

	add := func(item PromotedItem) {
		if _, ok := seen[item]; ok {
			return
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}

	if cfg.MainOffer != "" {
		add(PromotedItem{Title: cfg.MainOffer, Brand: BrandCOW})
		add(PromotedItem{Title: cfg.MainOffer, Brand: BrandWBI})
	}
	for _, sc := range cfg.SupportingContent {
		if sc.Title == "" {
			continue
		}
		add(PromotedItem{Title: sc.Title, Brand: sc.Brand})
	}

	return items
}

// AdRequirements counts the ad variants a campaign needs
type AdRequirements struct {
	COW   int `json:"cow" yaml:"cow"`
	WBI   int `json:"wbi" yaml:"wbi"`
	Total int `json:"total" yaml:"total"`
}

// For returns the count for brand b
func (a AdRequirements) For(b Brand) int {
	if b == BrandWBI {
		return a.WBI
	}
	return a.COW
}

// CalculateAds returns the number of ad variants required per brand
func CalculateAds(cfg CampaignConfig) AdRequirements {
	var req AdRequirements
	for _, item := range PromotedItems(cfg) {
		switch item.Brand {
		case BrandCOW:
			req.COW += AdVariations
		case BrandWBI:
			req.WBI += AdVariations
		}
	}
	req.Total = req.COW + req.WBI
	return req
}
