package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/session"
)

const samplePlan = `
campaign:
  name: Summer Push
  duration_weeks: 4
  main_offer: Summer Challenge
  supporting_content:
    - title: Hydration Tips
      brand: wbi
      type: Blog
    - title: ""
      brand: COW
      type: Video
weeks:
  - week: 2
    cow:
      - type: Announcement
        promotes: Summer Challenge
    wbi:
      - type: Last Chance
        promotes: Hydration Tips
  - week: 4
    wbi:
      - type: Reminder
        promotes: Old Offer
`

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	doc, err := LoadFile(writePlan(t, "plan.yaml", samplePlan))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	st, err := doc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}

	if st.Campaign.Name != "Summer Push" || st.Campaign.DurationWeeks != 4 {
		t.Errorf("Campaign = %+v", st.Campaign)
	}
	if st.Campaign.SupportingContent[0].Brand != plan.BrandWBI {
		t.Errorf("brand not normalised: %q", st.Campaign.SupportingContent[0].Brand)
	}
	if st.Plan.Len() != 4 {
		t.Errorf("Plan.Len() = %d, want 4", st.Plan.Len())
	}

	w2, _ := st.Plan.Week(2)
	if len(w2.WBI) != 1 || w2.WBI[0].Type != plan.EmailLastChance {
		t.Errorf("week 2 WBI = %+v, want LastChance", w2.WBI)
	}
	if w1, ok := st.Plan.Week(1); !ok || len(w1.COW)+len(w1.WBI) != 0 {
		t.Errorf("week 1 = %+v, %v, want empty", w1, ok)
	}

	cl := plan.BuildChecklist(st.Campaign, st.Plan)
	if cl.Totals != (plan.Totals{Emails: 3, Ads: 6, Content: 1, Grand: 10}) {
		t.Errorf("Totals = %+v", cl.Totals)
	}
}

func TestLoadFileJSON(t *testing.T) {
	content := `{"campaign":{"name":"J","duration_weeks":6,"main_offer":"Offer"},
"weeks":[{"week":6,"cow":[{"type":"BlogPromo","promotes":"Offer"}]}]}`

	doc, err := LoadFile(writePlan(t, "plan.json", content))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	st, err := doc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if w, _ := st.Plan.Week(6); len(w.COW) != 1 {
		t.Errorf("week 6 COW = %+v", w.COW)
	}
}

func TestDocumentStateErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{
			name: "bad duration",
			doc:  Document{Campaign: plan.CampaignConfig{DurationWeeks: 5}},
			want: plan.ErrInvalidDuration,
		},
		{
			name: "week past end",
			doc: Document{
				Campaign: plan.CampaignConfig{DurationWeeks: 4},
				Weeks:    []plan.WeekSchedule{{Week: 5}},
			},
			want: plan.ErrWeekOutOfRange,
		},
		{
			name: "week listed twice",
			doc: Document{
				Campaign: plan.CampaignConfig{DurationWeeks: 4},
				Weeks: []plan.WeekSchedule{
					{Week: 2, COW: []plan.ScheduledEmail{{Type: plan.EmailInvite, Promotes: "A"}}},
					{Week: 2, COW: []plan.ScheduledEmail{{Type: plan.EmailReminder, Promotes: "B"}}},
				},
			},
			want: plan.ErrDuplicateWeek,
		},
		{
			name: "unknown email type",
			doc: Document{
				Campaign: plan.CampaignConfig{DurationWeeks: 4},
				Weeks: []plan.WeekSchedule{{
					Week: 1,
					COW:  []plan.ScheduledEmail{{Type: "Postcard"}},
				}},
			},
			want: plan.ErrUnknownEmailType,
		},
		{
			name: "unknown brand",
			doc: Document{Campaign: plan.CampaignConfig{
				DurationWeeks:     4,
				SupportingContent: []plan.SupportingContent{{Title: "x", Brand: "ACME"}},
			}},
			want: plan.ErrUnknownBrand,
		},
		{
			name: "unknown content type",
			doc: Document{Campaign: plan.CampaignConfig{
				DurationWeeks:     4,
				SupportingContent: []plan.SupportingContent{{Title: "x", Type: "Podcast"}},
			}},
			want: plan.ErrUnknownContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.doc.State(); !errors.Is(err, tt.want) {
				t.Errorf("State() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDocumentIgnoresEnumCase(t *testing.T) {
	doc := Document{
		Campaign: plan.CampaignConfig{
			DurationWeeks:     4,
			SupportingContent: []plan.SupportingContent{{Title: "Stretch", Brand: "cow", Type: "video"}},
		},
		Weeks: []plan.WeekSchedule{{
			Week: 1,
			WBI:  []plan.ScheduledEmail{{Type: "last chance", Promotes: "Stretch"}},
		}},
	}

	st, err := doc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if sc := st.Campaign.SupportingContent[0]; sc.Brand != plan.BrandCOW || sc.Type != plan.ContentVideo {
		t.Errorf("content = %+v", sc)
	}
	ws, _ := st.Plan.Week(1)
	if len(ws.WBI) != 1 || ws.WBI[0].Type != plan.EmailLastChance {
		t.Errorf("week 1 WBI = %+v", ws.WBI)
	}
}

func TestDocumentDefaults(t *testing.T) {
	doc := Document{Campaign: plan.CampaignConfig{
		SupportingContent: []plan.SupportingContent{{Title: "Guide"}},
	}}
	st, err := doc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if st.Campaign.DurationWeeks != plan.DefaultDuration {
		t.Errorf("DurationWeeks = %d", st.Campaign.DurationWeeks)
	}
	sc := st.Campaign.SupportingContent[0]
	if sc.Brand != plan.BrandCOW || sc.Type != plan.ContentBlog {
		t.Errorf("content defaults = %+v", sc)
	}
}

func TestFromStateRoundTrip(t *testing.T) {
	st := session.NewState(6)
	st.Campaign.MainOffer = "Offer"
	st.Plan.AppendEmail(3, plan.BrandWBI, plan.ScheduledEmail{Type: plan.EmailInvite, Promotes: "Offer"})

	doc := FromState(st)
	if len(doc.Weeks) != 6 || doc.Weeks[2].Week != 3 {
		t.Fatalf("Weeks = %+v", doc.Weeks)
	}

	back, err := doc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if w, _ := back.Plan.Week(3); len(w.WBI) != 1 || w.WBI[0].Type != plan.EmailInvite {
		t.Errorf("week 3 WBI = %+v", w.WBI)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte("x"), FormatText); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode() error = %v, want ErrUnknownFormat", err)
	}
}
