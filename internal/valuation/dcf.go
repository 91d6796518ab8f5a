package valuation

import (
	"math"
)

// ProjectionRow is one year of the DCF table. Year 0 is the base year.
type ProjectionRow struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	EBIT         float64 `json:"ebit"`
	Depreciation float64 `json:"depreciation"`
	Tax          float64 `json:"tax"`
	NOPAT        float64 `json:"nopat"`
	CapEx        float64 `json:"capex"`
	WCChange     float64 `json:"wc_change"`
	FCF          float64 `json:"fcf"`
	PVFCF        float64 `json:"pv_fcf"`
}

// Valuation summarizes a DCF run. Equity value equals enterprise value;
// no net-debt adjustment is made.
type Valuation struct {
	TerminalValue     float64 `json:"terminal_value"`
	PVTerminalValue   float64 `json:"pv_terminal_value"`
	TotalPVFCF        float64 `json:"total_pv_fcf"`
	EnterpriseValue   float64 `json:"enterprise_value"`
	EquityValue       float64 `json:"equity_value"`
	FairValuePerShare float64 `json:"fair_value_per_share"`
	// TerminalShare is PV(TV) as a percentage of enterprise value.
	TerminalShare float64 `json:"terminal_share"`
}

// DCFResult is the projection table plus, when computable, its valuation.
type DCFResult struct {
	Rows      []ProjectionRow `json:"rows"`
	Valuation *Valuation      `json:"valuation,omitempty"`
}

// ProjectDCF projects free cash flow for a.ForecastYears years from
// baseRevenue and discounts it at WACC with a Gordon-growth terminal value.
//
// A terminal growth at or above WACC returns the rows with a nil Valuation
// and an AssumptionError. Non-positive shares return the valuation with a
// zero fair value and an AssumptionError.
func ProjectDCF(baseRevenue float64, a Assumptions) (*DCFResult, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	wacc := a.WACC / 100
	result := &DCFResult{Rows: make([]ProjectionRow, 0, a.ForecastYears+1)}

	base := operatingRow(0, baseRevenue, a)
	result.Rows = append(result.Rows, base)

	revenue := baseRevenue
	totalPV := 0.0
	for year := 1; year <= a.ForecastYears; year++ {
		revenue *= 1 + a.GrowthFor(year)/100

		row := operatingRow(year, revenue, a)
		row.CapEx = revenue * a.CapexPct / 100
		row.WCChange = revenue * a.WCChangePct / 100
		row.FCF = row.NOPAT + row.Depreciation - row.CapEx - row.WCChange
		row.PVFCF = row.FCF / math.Pow(1+wacc, float64(year))

		totalPV += row.PVFCF
		result.Rows = append(result.Rows, row)
	}

	g := a.Terminal() / 100
	if wacc <= g {
		return result, assumptionErr("terminal_growth", a.Terminal(),
			"must be below WACC %g for a finite terminal value", a.WACC)
	}

	last := result.Rows[len(result.Rows)-1]
	tv := last.FCF * (1 + g) / (wacc - g)
	pvTV := tv / math.Pow(1+wacc, float64(a.ForecastYears))
	ev := totalPV + pvTV

	v := &Valuation{
		TerminalValue:   tv,
		PVTerminalValue: pvTV,
		TotalPVFCF:      totalPV,
		EnterpriseValue: ev,
		EquityValue:     ev,
	}
	if ev != 0 {
		v.TerminalShare = pvTV / ev * 100
	}
	result.Valuation = v

	if a.SharesOutstanding <= 0 {
		return result, assumptionErr("shares_outstanding", a.SharesOutstanding,
			"fair value per share needs a positive share count")
	}
	v.FairValuePerShare = v.EquityValue / a.SharesOutstanding

	return result, nil
}

// operatingRow fills the EBIT-to-NOPAT part of a row. Tax is levied on EBIT.
func operatingRow(year int, revenue float64, a Assumptions) ProjectionRow {
	ebit := revenue * a.EBITMargin / 100
	tax := ebit * a.TaxRate / 100
	return ProjectionRow{
		Year:         year,
		Revenue:      revenue,
		EBIT:         ebit,
		Depreciation: revenue * a.DepreciationPct / 100,
		Tax:          tax,
		NOPAT:        ebit - tax,
	}
}
