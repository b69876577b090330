package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/foxzi/planry/internal/plan"
)

func sampleChecklist(t *testing.T) plan.Checklist {
	t.Helper()
	cfg := plan.NewCampaignConfig(8)
	cfg.Name = "Summer Push"
	cfg.MainOffer = "Summer Challenge"
	cfg.SupportingContent = []plan.SupportingContent{
		{Title: "Hydration Tips", Brand: plan.BrandWBI, Type: plan.ContentBlog},
	}

	p := plan.NewWeeklyPlan(8)
	p.AppendEmail(2, plan.BrandCOW, plan.ScheduledEmail{Type: plan.EmailLastChance, Promotes: "Summer Challenge"})
	p.AppendEmail(5, plan.BrandWBI, plan.ScheduledEmail{Type: plan.EmailReminder, Promotes: "Gone"})

	return plan.BuildChecklist(cfg, p)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"YAML", FormatYAML},
		{"yml", FormatYAML},
		{"", FormatText},
		{"txt", FormatText},
		{"md", FormatMarkdown},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) error = %v", err)
	}
}

func TestRenderText(t *testing.T) {
	out, err := RenderString(sampleChecklist(t), FormatText)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}

	for _, want := range []string{
		"Campaign: Summer Push (8 weeks)",
		"== Champions of Wellness (COW) ==",
		"Week 2: Last Chance -> Summer Challenge",
		"Week 5: Reminder -> Gone [missing]",
		"Summer Challenge (2 variations)",
		"Blog: Hydration Tips",
		"Totals: 2 emails, 6 ads, 1 content pieces, 9 assets",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	cow := out[strings.Index(out, "(COW)"):strings.Index(out, "(WBI)")]
	if !strings.Contains(cow, "Supporting content:\n  none") {
		t.Errorf("COW section should list no content:\n%s", cow)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderString(sampleChecklist(t), FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}

	for _, want := range []string{
		"# Summer Push",
		"## Well-Being Index (WBI)",
		"- [ ] `cow-w2-0` Week 2: Last Chance -> Summer Challenge",
		"`wbi-w5-0` Week 5: Reminder -> Gone **(missing)**",
		"| 2 | 6 | 1 | 9 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStructured(t *testing.T) {
	cl := sampleChecklist(t)

	out, err := RenderString(cl, FormatJSON)
	if err != nil {
		t.Fatalf("RenderString(json) error = %v", err)
	}
	var fromJSON plan.Checklist
	if err := json.Unmarshal([]byte(out), &fromJSON); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if fromJSON.Totals != cl.Totals || fromJSON.WBI.Emails[0].ID != "wbi-w5-0" {
		t.Errorf("json checklist = %+v", fromJSON)
	}

	out, err = RenderString(cl, FormatYAML)
	if err != nil {
		t.Fatalf("RenderString(yaml) error = %v", err)
	}
	var fromYAML plan.Checklist
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("yaml output invalid: %v", err)
	}
	if fromYAML.Ads != cl.Ads {
		t.Errorf("yaml ads = %+v, want %+v", fromYAML.Ads, cl.Ads)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, plan.Checklist{}, Format("pdf")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render() error = %v, want ErrUnknownFormat", err)
	}
}

func TestRenderEmptyCampaign(t *testing.T) {
	cfg := plan.NewCampaignConfig(4)
	out, err := RenderString(plan.BuildChecklist(cfg, plan.NewWeeklyPlan(4)), FormatText)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if !strings.Contains(out, "Campaign: - (4 weeks)") || !strings.Contains(out, "0 assets") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderAds(t *testing.T) {
	cfg := plan.NewCampaignConfig(8)
	cfg.MainOffer = "Offer"
	cfg.SupportingContent = []plan.SupportingContent{{Title: "Tips", Brand: plan.BrandWBI, Type: plan.ContentBlog}}

	var sb strings.Builder
	if err := RenderAds(&sb, plan.PromotedItems(cfg), plan.CalculateAds(cfg)); err != nil {
		t.Fatalf("RenderAds() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"Champions of Wellness (COW): 2 ad variations",
		"Well-Being Index (WBI): 4 ad variations",
		"  Tips (2 variations)",
		"Total: 6",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
