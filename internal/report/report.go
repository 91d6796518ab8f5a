// Package report renders a valuation session as Markdown tables and HTML.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/user/valuation-dashboard/internal/valuation"
)

// Input is what a report shows. Nil sections are skipped.
type Input struct {
	Company     string                       `json:"company,omitempty"`
	Filename    string                       `json:"filename"`
	Ratios      *valuation.Ratios            `json:"ratios"`
	Assumptions valuation.Assumptions        `json:"assumptions"`
	DCF         *valuation.DCFResult         `json:"dcf,omitempty"`
	EPS         []valuation.EPSRow           `json:"eps,omitempty"`
	Sensitivity *valuation.SensitivityResult `json:"sensitivity,omitempty"`
	Verdict     *valuation.VerdictResult     `json:"verdict,omitempty"`
	// Notes are non-fatal problems shown under the tables.
	Notes []string `json:"notes,omitempty"`
}

// Markdown renders the report as GitHub-flavoured Markdown.
func Markdown(in Input) string {
	var b strings.Builder

	title := in.Company
	if title == "" {
		title = in.Filename
	}
	fmt.Fprintf(&b, "# Valuation: %s\n\n", title)

	if in.Verdict != nil {
		v := in.Verdict
		fmt.Fprintf(&b, "**%s**: fair value %s vs price %s (%+.2f%%, threshold ±%g%%)\n\n",
			v.Verdict, money(v.FairValue), money(v.CurrentPrice), v.DiffPct, v.Threshold)
	}

	if r := in.Ratios; r != nil {
		b.WriteString("## Observed ratios\n\n")
		table(&b, []string{"Metric", "Value"}, [][]string{
			{"Base revenue", money(r.BaseRevenue)},
			{"EBIT", money(r.EBIT)},
			{"EBIT margin", pct(r.EBITMargin)},
			{"Tax rate", pct(r.TaxRate)},
			{"Depreciation", pct(r.DepreciationPct)},
			{"Sales CAGR", pct(r.SalesCAGR)},
			{"Shares outstanding", money(r.SharesOutstanding)},
		})
	}

	a := in.Assumptions
	b.WriteString("## Assumptions\n\n")
	growth := fmt.Sprintf("%s / %s / %s", pct(a.Growth1to2), pct(a.Growth3to5), pct(a.Growth6On))
	if a.GrowthMode == valuation.GrowthFlat {
		growth = pct(a.FlatGrowth) + " flat"
	}
	table(&b, []string{"Assumption", "Value"}, [][]string{
		{"Forecast years", fmt.Sprint(a.ForecastYears)},
		{"Revenue growth", growth},
		{"Terminal growth", pct(a.Terminal())},
		{"EBIT margin", pct(a.EBITMargin)},
		{"Depreciation", pct(a.DepreciationPct)},
		{"CapEx", pct(a.CapexPct)},
		{"Change in WC", pct(a.WCChangePct)},
		{"Tax rate", pct(a.TaxRate)},
		{"WACC", pct(a.WACC)},
	})

	if in.DCF != nil {
		b.WriteString("## Discounted cash flow\n\n")
		rows := make([][]string, 0, len(in.DCF.Rows))
		for _, r := range in.DCF.Rows {
			rows = append(rows, []string{
				fmt.Sprint(r.Year), money(r.Revenue), money(r.EBIT), money(r.Depreciation),
				money(r.Tax), money(r.NOPAT), money(r.CapEx), money(r.WCChange),
				money(r.FCF), money(r.PVFCF),
			})
		}
		table(&b, []string{"Year", "Revenue", "EBIT", "Depreciation", "Tax", "NOPAT", "CapEx", "ΔWC", "FCF", "PV(FCF)"}, rows)

		if v := in.DCF.Valuation; v != nil {
			table(&b, []string{"Valuation", "Value"}, [][]string{
				{"Sum of PV(FCF)", money(v.TotalPVFCF)},
				{"Terminal value", money(v.TerminalValue)},
				{"PV of terminal value", money(v.PVTerminalValue)},
				{"Enterprise value", money(v.EnterpriseValue)},
				{"Equity value", money(v.EquityValue)},
				{"Fair value per share", money(v.FairValuePerShare)},
				{"Terminal share of EV", pct(v.TerminalShare)},
			})
		}
	}

	if len(in.EPS) > 0 {
		b.WriteString("## Earnings per share\n\n")
		rows := make([][]string, 0, len(in.EPS))
		for _, r := range in.EPS {
			rows = append(rows, []string{
				fmt.Sprint(r.Year), money(r.Revenue), money(r.EBIT), money(r.Interest),
				money(r.PBT), money(r.Tax), money(r.PAT), money(r.EPS),
			})
		}
		table(&b, []string{"Year", "Revenue", "EBIT", "Interest", "PBT", "Tax", "PAT", "EPS"}, rows)
	}

	if s := in.Sensitivity; s != nil {
		b.WriteString("## Sensitivity\n\n")
		rows := make([][]string, 0, len(s.Growth))
		for _, p := range s.Growth {
			rows = append(rows, []string{pct(p.Growth), cellValue(p.GridCell), cellShare(p.GridCell)})
		}
		table(&b, []string{"Growth (yrs 1-5)", "Fair value", "TV % of EV"}, rows)
		matrix(&b, "WACC \\ g", s.WACCTerminal)
		matrix(&b, "EBIT margin \\ g", s.MarginTerminal)
	}

	if len(in.Notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, n := range in.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: right; }
.badge { color: #fff; padding: 4px 10px; border-radius: 4px; }
</style>
</head>
<body>
{{if .Verdict}}<p><span class="badge" style="background: {{.Color}}">{{.Verdict}}</span></p>{{end}}
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown report into a standalone page.
func HTML(in Input) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(in)), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	data := struct {
		Title   string
		Verdict string
		Color   string
		Body    template.HTML
	}{
		Title: "Valuation " + in.Company,
		Body:  template.HTML(body.String()),
	}
	if in.Verdict != nil {
		data.Verdict = string(in.Verdict.Verdict)
		data.Color = in.Verdict.Color
	}

	var out bytes.Buffer
	if err := page.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.String(), nil
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func matrix(b *strings.Builder, corner string, m valuation.Matrix) {
	header := []string{corner}
	for _, c := range m.Cols {
		header = append(header, pct(c))
	}
	rows := make([][]string, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = []string{pct(r)}
		for _, cell := range m.Cells[i] {
			rows[i] = append(rows[i], cellValue(cell))
		}
	}
	table(b, header, rows)
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func pct(v float64) string {
	return humanize.FtoaWithDigits(v, 2) + "%"
}

func cellValue(c valuation.GridCell) string {
	if !c.Valid {
		return "n/a"
	}
	return money(c.FairValue)
}

func cellShare(c valuation.GridCell) string {
	if !c.Valid {
		return "n/a"
	}
	return pct(c.TerminalShare)
}
