package valuation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/valuation-dashboard/internal/sheet"
	"github.com/user/valuation-dashboard/internal/sheet/sheettest"
	"github.com/user/valuation-dashboard/internal/statements"
	"github.com/user/valuation-dashboard/pkg/config"
)

// fixtureAssumptions yield FCF = 13% of revenue every year.
func fixtureAssumptions() Assumptions {
	a := Assumptions{
		ForecastYears:     5,
		GrowthMode:        GrowthFlat,
		FlatGrowth:        10,
		EBITMargin:        20,
		DepreciationPct:   5,
		CapexPct:          6,
		WCChangePct:       1,
		TaxRate:           25,
		WACC:              10,
		SharesOutstanding: 10,
	}
	return a.WithTerminal(4)
}

func TestProjectDCFEndToEnd(t *testing.T) {
	res, err := ProjectDCF(1000, fixtureAssumptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 6)

	base := res.Rows[0]
	assert.Equal(t, 0, base.Year)
	assert.Equal(t, 1000.0, base.Revenue)
	assert.InDelta(t, 200, base.EBIT, 1e-9)
	assert.Zero(t, base.FCF)
	assert.Zero(t, base.PVFCF)

	for _, row := range res.Rows[1:] {
		assert.InDelta(t, 0.13*row.Revenue, row.FCF, 1e-9, "year %d", row.Year)
		assert.InDelta(t, 130, row.PVFCF, 1e-9, "year %d", row.Year)
	}

	last := res.Rows[5]
	assert.InDelta(t, 1610.51, last.Revenue, 1e-6)
	assert.InDelta(t, 209.3663, last.FCF, 1e-4)

	v := res.Valuation
	require.NotNil(t, v)
	assert.InDelta(t, 650, v.TotalPVFCF, 1e-9)
	assert.InDelta(t, 3629.0159, v.TerminalValue, 1e-3)
	assert.InDelta(t, 2253.33, v.PVTerminalValue, 1e-2)
	assert.InDelta(t, 2903.33, v.EnterpriseValue, 1e-2)
	assert.Equal(t, v.EnterpriseValue, v.EquityValue)
	assert.InDelta(t, 290.33, v.FairValuePerShare, 1e-2)
	assert.InDelta(t, 77.61, v.TerminalShare, 1e-2)
}

func TestProjectDCFTieredGrowth(t *testing.T) {
	a := fixtureAssumptions()
	a.GrowthMode = GrowthTiered
	a.Growth1to2 = 20
	a.Growth3to5 = 10
	a.Growth6On = 5
	a.ForecastYears = 7

	res, err := ProjectDCF(100, a)
	require.NoError(t, err)

	want := []float64{100, 120, 144, 158.4, 174.24, 191.664, 201.2472, 211.30956}
	for i, row := range res.Rows {
		assert.InDelta(t, want[i], row.Revenue, 1e-6, "year %d", row.Year)
	}
}

func TestProjectDCFTerminalFallsBackToGrowth6On(t *testing.T) {
	a := fixtureAssumptions()
	a.TerminalGrowth = nil
	a.Growth6On = 4

	res, err := ProjectDCF(1000, a)
	require.NoError(t, err)
	assert.InDelta(t, 290.33, res.Valuation.FairValuePerShare, 1e-2)
}

func TestProjectDCFMonotonicity(t *testing.T) {
	fairValue := func(mutate func(*Assumptions)) float64 {
		a := fixtureAssumptions()
		mutate(&a)
		res, err := ProjectDCF(1000, a)
		require.NoError(t, err)
		return res.Valuation.FairValuePerShare
	}

	prev := fairValue(func(a *Assumptions) { a.WACC = 8 })
	for _, wacc := range []float64{9, 10, 12, 15} {
		fv := fairValue(func(a *Assumptions) { a.WACC = wacc })
		assert.Less(t, fv, prev, "wacc %g", wacc)
		prev = fv
	}

	prev = fairValue(func(a *Assumptions) { a.EBITMargin = 10 })
	for _, margin := range []float64{15, 20, 30} {
		fv := fairValue(func(a *Assumptions) { a.EBITMargin = margin })
		assert.Greater(t, fv, prev, "margin %g", margin)
		prev = fv
	}
}

func TestProjectDCFGrowthMonotonicity(t *testing.T) {
	project := func(mutate func(*Assumptions)) *DCFResult {
		a := fixtureAssumptions()
		mutate(&a)
		res, err := ProjectDCF(1000, a)
		require.NoError(t, err)
		require.NotNil(t, res.Valuation)
		return res
	}

	sweeps := map[string]func(g float64) func(*Assumptions){
		"flat": func(g float64) func(*Assumptions) {
			return func(a *Assumptions) { a.FlatGrowth = g }
		},
		"tiered": func(g float64) func(*Assumptions) {
			return func(a *Assumptions) {
				a.GrowthMode = GrowthTiered
				a.Growth1to2 = g + 4
				a.Growth3to5 = g
				a.Growth6On = g / 2
			}
		},
	}

	for name, sweep := range sweeps {
		t.Run(name, func(t *testing.T) {
			prev := project(sweep(0))
			for _, g := range []float64{5, 10, 14, 16, 25} {
				res := project(sweep(g))
				assert.Equal(t, prev.Rows[0].Revenue, res.Rows[0].Revenue, "base year is never escalated")
				for y := 1; y < len(res.Rows); y++ {
					assert.Greater(t, res.Rows[y].Revenue, prev.Rows[y].Revenue, "growth %g year %d", g, y)
				}
				assert.Greater(t, res.Valuation.FairValuePerShare, prev.Valuation.FairValuePerShare, "growth %g", g)
				prev = res
			}
		})
	}
}

func TestProjectDCFTerminalPrecondition(t *testing.T) {
	for _, g := range []float64{10, 12} {
		a := fixtureAssumptions().WithTerminal(g)

		res, err := ProjectDCF(1000, a)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidAssumption))

		var ae *AssumptionError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, "terminal_growth", ae.Field)

		require.NotNil(t, res)
		assert.Len(t, res.Rows, 6, "rows survive a degenerate terminal value")
		assert.Nil(t, res.Valuation)
	}
}

func TestProjectDCFZeroShares(t *testing.T) {
	a := fixtureAssumptions()
	a.SharesOutstanding = 0

	res, err := ProjectDCF(1000, a)
	assert.True(t, errors.Is(err, ErrInvalidAssumption))
	require.NotNil(t, res.Valuation)
	assert.InDelta(t, 2903.33, res.Valuation.EnterpriseValue, 1e-2)
	assert.Zero(t, res.Valuation.FairValuePerShare)
}

func TestProjectDCFNoYears(t *testing.T) {
	a := fixtureAssumptions()
	a.ForecastYears = 0

	res, err := ProjectDCF(1000, a)
	assert.True(t, errors.Is(err, ErrInvalidAssumption))
	assert.Nil(t, res)

	rows, err := ProjectEPS(1000, a)
	assert.True(t, errors.Is(err, ErrInvalidAssumption))
	assert.Nil(t, rows)
}

func TestProjectEPS(t *testing.T) {
	a := fixtureAssumptions()

	rows, err := ProjectEPS(1000, a)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	// EBIT 20%, interest 10%, tax 25% of PBT: PAT is 7.5% of revenue.
	for _, row := range rows {
		assert.InDelta(t, row.Revenue*0.10, row.Interest, 1e-9)
		assert.InDelta(t, row.EBIT-row.Interest, row.PBT, 1e-9)
		assert.InDelta(t, row.Revenue*0.075, row.PAT, 1e-9)
		assert.InDelta(t, row.PAT/10, row.EPS, 1e-9)
	}
	assert.InDelta(t, 7.5, rows[0].EPS, 1e-9)
	assert.InDelta(t, 1610.51, rows[5].Revenue, 1e-6)
}

func TestProjectEPSZeroShares(t *testing.T) {
	a := fixtureAssumptions()
	a.SharesOutstanding = 0

	rows, err := ProjectEPS(1000, a)
	assert.True(t, errors.Is(err, ErrInvalidAssumption))
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.Zero(t, row.EPS)
		assert.NotZero(t, row.PAT)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		fair, price float64
		want        Verdict
		color       string
	}{
		{110, 100, FairlyValued, "gray"},
		{111, 100, Undervalued, "green"},
		{90, 100, FairlyValued, "gray"},
		{89, 100, Overvalued, "red"},
		{100, 100, FairlyValued, "gray"},
	}

	for _, tt := range tests {
		got, err := Classify(tt.fair, tt.price, 10)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Verdict, "fair %g price %g", tt.fair, tt.price)
		assert.Equal(t, tt.color, got.Color)
	}

	got, err := Classify(111, 100, 15)
	require.NoError(t, err)
	assert.Equal(t, FairlyValued, got.Verdict)
	assert.InDelta(t, 11, got.DiffPct, 1e-9)
}

func TestClassifyRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []float64{0, -5} {
		_, err := Classify(100, price, 10)
		assert.True(t, errors.Is(err, ErrInvalidAssumption))
	}
}

func TestDeriveRatiosFixture(t *testing.T) {
	st, err := sheet.ExtractStatements(sheet.FromStrings(sheettest.Rows()), 0)
	require.NoError(t, err)

	r := DeriveRatios(st)
	assert.Equal(t, 1000.0, r.BaseRevenue)
	assert.InDelta(t, 300, r.EBIT, 1e-9)
	assert.InDelta(t, 30, r.EBITMargin, 1e-9)
	assert.InDelta(t, 25, r.TaxRate, 1e-9)
	assert.InDelta(t, 5, r.DepreciationPct, 1e-9)
	assert.InDelta(t, 11.8034, r.SalesCAGR, 1e-4)
	assert.Equal(t, 10.0, r.SharesOutstanding)
	assert.Equal(t, "Number of shares", r.SharesSource)
	assert.Equal(t, 250.0, r.CurrentPrice)
	assert.Empty(t, r.Warnings)
	assert.Empty(t, r.Undetermined)
}

func TestDeriveRatiosMissingItemsAndZeroDivision(t *testing.T) {
	pl, err := statements.NewTable(statements.SectionProfitLoss, "Report Date",
		[]string{"Mar-2023"},
		[]statements.Row{{Label: "Sales", Values: []float64{0}}})
	require.NoError(t, err)
	bs, err := statements.NewTable(statements.SectionBalanceSheet, "Report Date",
		[]string{"Mar-2023"},
		[]statements.Row{{Label: "No. of Equity Shares", Values: []float64{5e7}}})
	require.NoError(t, err)

	st := &statements.Statements{}
	st.Set(pl)
	st.Set(bs)

	r := DeriveRatios(st)
	assert.Zero(t, r.EBITMargin)
	assert.Zero(t, r.TaxRate)
	assert.Contains(t, r.Undetermined, "ebit_margin")
	assert.Contains(t, r.Undetermined, "tax_rate")
	assert.Contains(t, r.Undetermined, "depreciation_pct")
	assert.Len(t, r.Warnings, len(statements.CostItems)+2)
	assert.Equal(t, 5.0, r.SharesOutstanding)
	assert.Equal(t, "No. of Equity Shares", r.SharesSource)
}

func TestDefaultAssumptions(t *testing.T) {
	cfg := config.ValuationConfig{
		ForecastYears: 5, Growth1to2: 12, Growth3to5: 10, Growth6On: 5,
		CapexPct: 5, WCChangePct: 1, WACC: 11,
	}
	r := &Ratios{EBITMargin: 30, TaxRate: 25, DepreciationPct: 5, SharesOutstanding: 10}

	a := DefaultAssumptions(cfg, r)
	assert.Equal(t, GrowthTiered, a.GrowthMode)
	assert.Equal(t, 30.0, a.EBITMargin)
	assert.Equal(t, 10.0, a.SharesOutstanding)
	assert.Nil(t, a.TerminalGrowth)
	assert.Equal(t, 5.0, a.Terminal())
	assert.Equal(t, 12.0, a.GrowthFor(2))
	assert.Equal(t, 10.0, a.GrowthFor(3))
	assert.Equal(t, 5.0, a.GrowthFor(6))
}

func TestSensitivity(t *testing.T) {
	a := fixtureAssumptions()
	sets := SensitivitySets{
		Growth:         []float64{5, 10, 25},
		WACC:           []float64{3, 9, 10, 13},
		TerminalGrowth: []float64{3, 4},
		EBITMargin:     []float64{10, 20},
	}

	res := Sensitivity(1000, a, sets)

	require.Len(t, res.Growth, 3)
	assert.InDelta(t, 290.33, res.Growth[1].FairValue, 1e-2, "10% matches the base run")
	assert.Less(t, res.Growth[0].FairValue, res.Growth[1].FairValue)
	assert.Greater(t, res.Growth[2].FairValue, res.Growth[1].FairValue)
	for _, p := range res.Growth {
		assert.True(t, p.Valid)
		assert.Greater(t, p.TerminalShare, 0.0)
	}

	m := res.WACCTerminal
	require.Len(t, m.Cells, 4)
	assert.False(t, m.Cells[0][0].Valid, "WACC 3 with g 3 is degenerate")
	assert.False(t, m.Cells[0][1].Valid)
	assert.True(t, m.Cells[2][1].Valid)
	assert.InDelta(t, 290.33, m.Cells[2][1].FairValue, 1e-2)
	assert.Greater(t, m.Cells[1][1].FairValue, m.Cells[3][1].FairValue)

	mm := res.MarginTerminal
	require.Len(t, mm.Cells, 2)
	assert.InDelta(t, 290.33, mm.Cells[1][1].FairValue, 1e-2)
	assert.Less(t, mm.Cells[0][1].FairValue, mm.Cells[1][1].FairValue)
}

func TestSetsFromConfig(t *testing.T) {
	sets := SetsFromConfig(config.SensitivityConfig{WACC: []float64{8}})
	assert.Equal(t, []float64{8}, sets.WACC)
	assert.Equal(t, DefaultSensitivitySets().Growth, sets.Growth)
}
