package analytics

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed insights.yaml
var defaultInsights []byte

// Catalogue holds the narrative blocks per benefit category.
type Catalogue struct {
	Insights       map[string][]SectionTemplate `yaml:"insights"`
	Default        []SectionTemplate            `yaml:"default"`
	Recommendation string                       `yaml:"recommendation"`
	NextSteps      string                       `yaml:"next_steps"`

	parsed map[string][]parsedSection
	def    []parsedSection
}

// SectionTemplate is one heading and a text/template body.
type SectionTemplate struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

type parsedSection struct {
	heading string
	body    *template.Template
}

// InsightSection is a rendered narrative block.
type InsightSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Insight is the narrative for one selection.
type Insight struct {
	Benefit        string           `json:"benefit"`
	Title          string           `json:"title"`
	Sections       []InsightSection `json:"sections"`
	Recommendation string           `json:"recommendation,omitempty"`
	NextSteps      string           `json:"next_steps,omitempty"`
}

// insightData is what section bodies are rendered with.
type insightData struct {
	Title        string
	SharePercent float64
	BenefitTotal float64
	GrandTotal   float64
	TopCorrelate string
}

// DefaultCatalogue parses the embedded catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultInsights)
}

// LoadCatalogue reads a catalogue from path, or the embedded one when path
// is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "insights: read catalogue %s", path)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes YAML and compiles every section body.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "insights: parse catalogue")
	}
	if len(c.Default) == 0 {
		return nil, eris.New("insights: catalogue has no default sections")
	}

	var err error
	if c.def, err = compileSections("default", c.Default); err != nil {
		return nil, err
	}
	c.parsed = make(map[string][]parsedSection, len(c.Insights))
	for benefit, sections := range c.Insights {
		if c.parsed[benefit], err = compileSections(benefit, sections); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func compileSections(name string, sections []SectionTemplate) ([]parsedSection, error) {
	out := make([]parsedSection, len(sections))
	for i, s := range sections {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(s.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "insights: section %q of %s", s.Heading, name)
		}
		out[i] = parsedSection{heading: s.Heading, body: tmpl}
	}
	return out, nil
}

// Title turns a column name like "physical_activity" into "Physical Activity".
func Title(benefit string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(benefit, "_", " "))
}

// Render builds the narrative for benefit. Categories without their own
// sections get the default share-of-total narrative.
func (c *Catalogue) Render(kpi KPI, corr *Correlation) (*Insight, error) {
	data := insightData{
		Title:        Title(kpi.Benefit),
		SharePercent: kpi.SharePercent,
		BenefitTotal: kpi.BenefitTotal,
		GrandTotal:   kpi.GrandTotal,
	}
	if corr != nil && corr.TopPositive != nil {
		data.TopCorrelate = Title(corr.TopPositive.Category)
	}

	sections, ok := c.parsed[kpi.Benefit]
	if !ok {
		sections = c.def
	}

	out := &Insight{
		Benefit:        kpi.Benefit,
		Title:          data.Title,
		Sections:       make([]InsightSection, 0, len(sections)),
		Recommendation: strings.TrimSpace(c.Recommendation),
		NextSteps:      strings.TrimSpace(c.NextSteps),
	}
	for _, s := range sections {
		var buf bytes.Buffer
		if err := s.body.Execute(&buf, data); err != nil {
			return nil, eris.Wrapf(err, "insights: render %q", s.heading)
		}
		out.Sections = append(out.Sections, InsightSection{
			Heading: s.heading,
			Body:    strings.Join(strings.Fields(buf.String()), " "),
		})
	}
	return out, nil
}
