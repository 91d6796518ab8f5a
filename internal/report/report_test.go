package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/valuation-dashboard/internal/valuation"
)

func sampleInput(t *testing.T) Input {
	t.Helper()
	a := valuation.Assumptions{
		ForecastYears: 5, GrowthMode: valuation.GrowthFlat, FlatGrowth: 10,
		EBITMargin: 20, DepreciationPct: 5, CapexPct: 6, WCChangePct: 1,
		TaxRate: 25, WACC: 10, SharesOutstanding: 10,
	}.WithTerminal(4)

	dcf, err := valuation.ProjectDCF(1000, a)
	require.NoError(t, err)
	eps, err := valuation.ProjectEPS(1000, a)
	require.NoError(t, err)
	verdict, err := valuation.Classify(dcf.Valuation.FairValuePerShare, 250, 10)
	require.NoError(t, err)

	return Input{
		Company:     "ACME INDUSTRIES LTD",
		Assumptions: a,
		Ratios:      &valuation.Ratios{BaseRevenue: 1000, EBIT: 300, EBITMargin: 30},
		DCF:         dcf,
		EPS:         eps,
		Sensitivity: valuation.Sensitivity(1000, a, valuation.SensitivitySets{
			Growth: []float64{10}, WACC: []float64{4, 10}, TerminalGrowth: []float64{4}, EBITMargin: []float64{20},
		}),
		Verdict: verdict,
		Notes:   []string{"Interest not found in Annual P&L, using 0"},
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleInput(t))

	assert.True(t, strings.HasPrefix(out, "# Valuation: ACME INDUSTRIES LTD"))
	assert.Contains(t, out, "**Undervalued**")
	assert.Contains(t, out, "| Year | Revenue | EBIT |")
	assert.Contains(t, out, "1,610.51")
	assert.Contains(t, out, "| Fair value per share | 290.33 |")
	assert.Contains(t, out, "10% flat")
	assert.Contains(t, out, "n/a", "degenerate sensitivity cell")
	assert.Contains(t, out, "- Interest not found")
}

func TestMarkdownSkipsMissingSections(t *testing.T) {
	out := Markdown(Input{Filename: "acme.xlsx"})
	assert.Contains(t, out, "# Valuation: acme.xlsx")
	assert.NotContains(t, out, "Discounted cash flow")
	assert.NotContains(t, out, "Sensitivity")
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleInput(t))
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `class="badge" style="background: green"`)
	assert.Contains(t, out, "<h2>Discounted cash flow</h2>")
}
