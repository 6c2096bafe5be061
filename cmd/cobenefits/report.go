package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/cobenefits/internal/analytics"
)

var reportFlags selectionFlags

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard for a selection",
	Long: `Builds every dashboard aggregation for one selection and prints it.

Examples:
  # Default selection (all-UK aggregate, physical activity)
  report

  # Scotland and Wales, air quality, as JSON
  report --nation Scotland --nation Wales --benefit air_quality --format json

  # Head-to-head between two authorities
  report --a Leeds --b Glasgow`,
	RunE: runReport,
}

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().String("format", "text", "output format: text or json")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return eris.Errorf("unknown format %q (want text or json)", format)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.service.Dashboard(cmd.Context(), reportFlags.query(cmd), reportFlags.a, reportFlags.b)
	if err != nil {
		return eris.Wrap(err, "build dashboard")
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return writeReport(out, d)
}

func money(v float64) string {
	return fmt.Sprintf("£%.2fm", v)
}

// writeReport prints d as aligned plain-text sections.
func writeReport(out io.Writer, d *analytics.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("%s\n", analytics.Title(d.Selection.Benefit))
	p("Nations:\t%s\n\n", strings.Join(d.Selection.Nations, ", "))

	k := d.KPI
	p("KPIS\n")
	p("Benefit total\t%s\n", money(k.BenefitTotal))
	p("All benefits\t%s\n", money(k.GrandTotal))
	p("Share of total\t%.1f%%\n", k.SharePercent)
	if k.PerCapita != nil {
		p("Per capita\t£%.2f\n", *k.PerCapita)
	}
	p("\n")

	p("TREND\n")
	if len(d.Trend) == 0 {
		p("unavailable\n")
	}
	for _, t := range d.Trend {
		p("%s\t%s\t%s\n", t.Year, t.Nation, money(t.Value))
	}
	p("\n")

	rankings := []struct {
		title   string
		entries []analytics.RankEntry
		value   func(analytics.RankEntry) string
	}{
		{"TOP LOCAL AUTHORITIES", d.RankingTotal, func(e analytics.RankEntry) string { return money(e.Value) }},
		{"TOP LOCAL AUTHORITIES PER CAPITA", d.RankingPerCapita, func(e analytics.RankEntry) string { return fmt.Sprintf("£%.2f", e.Value) }},
	}
	for _, r := range rankings {
		p("%s\n", r.title)
		if len(r.entries) == 0 {
			p("unavailable\n")
		}
		for i, e := range r.entries {
			p("%d\t%s\t%s\n", i+1, e.LocalAuthority, r.value(e))
		}
		p("\n")
	}

	p("CORRELATION\n")
	if d.Correlation != nil {
		for _, c := range d.Correlation.Correlates {
			p("%s\t%+.3f\n", c.Category, c.Coefficient)
		}
		if top := d.Correlation.TopPositive; top != nil {
			p("Strongest positive:\t%s\n", top.Category)
		}
	}
	p("\n")

	if m := d.Matchup; m != nil {
		p("HEAD-TO-HEAD\n")
		p("%s\t%s\n", m.A.LocalAuthority, money(m.A.Value))
		p("%s\t%s\n", m.B.LocalAuthority, money(m.B.Value))
		p("Difference\t%s\n\n", money(m.Difference))
	}

	p("DAMAGE BREAKDOWN\n")
	if d.Breakdown == nil || !d.Breakdown.Available {
		p("unavailable\n")
	} else {
		for _, s := range d.Breakdown.Slices {
			p("%s\t%s\n", s.DamageType, money(s.Value))
		}
		if d.Breakdown.HealthShare != nil {
			p("Health share\t%.1f%%\n", *d.Breakdown.HealthShare)
		}
	}
	p("\n")

	p("ALL BENEFITS\n")
	for _, c := range d.Comparison {
		p("%s\t%s\n", c.Category, money(c.Total))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if in := d.Insight; in != nil {
		_, _ = fmt.Fprintf(out, "\nINSIGHT: %s\n", in.Title)
		for _, s := range in.Sections {
			_, _ = fmt.Fprintf(out, "\n%s\n%s\n", s.Heading, s.Body)
		}
		if in.Recommendation != "" {
			_, _ = fmt.Fprintf(out, "\nRecommendation: %s\n", in.Recommendation)
		}
		if in.NextSteps != "" {
			_, _ = fmt.Fprintf(out, "Next steps: %s\n", in.NextSteps)
		}
	}
	return nil
}
