package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/plan"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Format is a checklist output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported output format
var Formats = []Format{FormatJSON, FormatYAML, FormatText, FormatMarkdown}

// ParseFormat parses a format name. "yml", "txt" and "md" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the HTTP content type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

var funcs = template.FuncMap{
	"label": func(t plan.EmailType) string { return t.Label() },
	"brands": func(c plan.Checklist) []plan.BrandAssets {
		return []plan.BrandAssets{c.COW, c.WBI}
	},
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

const textReport = `Campaign: {{orDash .Campaign}} ({{.DurationWeeks}} weeks)
Main offer: {{orDash .MainOffer}}
{{range brands .}}
== {{.Name}} ({{.Brand}}) ==
Emails:
{{- range .Emails}}
  Week {{.Week}}: {{label .Type}} -> {{orDash .Promotes}}{{if not .Resolved}} [missing]{{end}}
{{- else}}
  none
{{- end}}
Ads:
{{- range .Ads}}
  {{.Title}} ({{.Variations}} variations)
{{- else}}
  none
{{- end}}
Supporting content:
{{- range .Content}}
  {{.Type}}: {{.Title}}
{{- else}}
  none
{{- end}}
{{end}}
Totals: {{.Totals.Emails}} emails, {{.Totals.Ads}} ads, {{.Totals.Content}} content pieces, {{.Totals.Grand}} assets
`

const markdownReport = `# {{if .Campaign}}{{.Campaign}}{{else}}Untitled campaign{{end}}

- Duration: {{.DurationWeeks}} weeks
- Main offer: {{orDash .MainOffer}}
{{range brands .}}
## {{.Name}} ({{.Brand}})

### Emails
{{range .Emails}}
- [ ] ` + "`{{.ID}}`" + ` Week {{.Week}}: {{label .Type}} -> {{orDash .Promotes}}{{if not .Resolved}} **(missing)**{{end}}
{{- else}}
_None_
{{- end}}

### Ads
{{range .Ads}}
- [ ] {{.Title}} ({{.Variations}} variations)
{{- else}}
_None_
{{- end}}

### Supporting content
{{range .Content}}
- [ ] {{.Type}}: {{.Title}}
{{- else}}
_None_
{{- end}}
{{end}}
## Totals

| Emails | Ads | Content | Total |
|-------:|----:|--------:|------:|
| {{.Totals.Emails}} | {{.Totals.Ads}} | {{.Totals.Content}} | {{.Totals.Grand}} |
`

var (
	textTmpl     = template.Must(template.New("text").Funcs(funcs).Parse(textReport))
	markdownTmpl = template.Must(template.New("markdown").Funcs(funcs).Parse(markdownReport))
)

// Render writes the checklist in the given format
func Render(w io.Writer, cl plan.Checklist, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(cl)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(cl); err == nil {
			err = enc.Close()
		}
	case FormatText:
		err = textTmpl.Execute(w, cl)
	case FormatMarkdown:
		err = markdownTmpl.Execute(w, cl)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s checklist: %w", format, err)
	}

	metrics.IncExports(string(format))
	return nil
}

// RenderString renders the checklist to a string
func RenderString(cl plan.Checklist, format Format) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, cl, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderAds writes a short ad requirements summary
func RenderAds(w io.Writer, items []plan.PromotedItem, req plan.AdRequirements) error {
	for _, b := range plan.Brands {
		if _, err := fmt.Fprintf(w, "%s (%s): %d ad variations\n", b.Name(), b, req.For(b)); err != nil {
			return err
		}
		for _, item := range items {
			if item.Brand != b {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s (%d variations)\n", item.Title, plan.AdVariations); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Total: %d\n", req.Total)
	return err
}
