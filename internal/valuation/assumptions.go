package valuation

import (
	"github.com/user/valuation-dashboard/pkg/config"
)

// GrowthMode selects how revenue growth is applied across forecast years.
type GrowthMode string

const (
	// GrowthTiered uses Growth1to2 for years 1-2, Growth3to5 for 3-5 and
	// Growth6On afterwards.
	GrowthTiered GrowthMode = "tiered"
	// GrowthFlat applies FlatGrowth to every year.
	GrowthFlat GrowthMode = "flat"
)

// Assumptions drive both projection engines. Every rate is in percent.
type Assumptions struct {
	ForecastYears     int        `json:"forecast_years"`
	GrowthMode        GrowthMode `json:"growth_mode"`
	FlatGrowth        float64    `json:"flat_growth"`
	Growth1to2        float64    `json:"growth_1_2"`
	Growth3to5        float64    `json:"growth_3_5"`
	Growth6On         float64    `json:"growth_6_on"`
	TerminalGrowth    *float64   `json:"terminal_growth,omitempty"`
	EBITMargin        float64    `json:"ebit_margin"`
	DepreciationPct   float64    `json:"depreciation_pct"`
	CapexPct          float64    `json:"capex_pct"`
	WCChangePct       float64    `json:"wc_change_pct"`
	TaxRate           float64    `json:"tax_rate"`
	WACC              float64    `json:"wacc"`
	SharesOutstanding float64    `json:"shares_outstanding"`
}

// GrowthFor returns the growth rate applied in a forecast year (1-based).
func (a Assumptions) GrowthFor(year int) float64 {
	if a.GrowthMode == GrowthFlat {
		return a.FlatGrowth
	}
	switch {
	case year <= 2:
		return a.Growth1to2
	case year <= 5:
		return a.Growth3to5
	default:
		return a.Growth6On
	}
}

// Terminal returns the perpetual growth rate, falling back to Growth6On.
func (a Assumptions) Terminal() float64 {
	if a.TerminalGrowth != nil {
		return *a.TerminalGrowth
	}
	return a.Growth6On
}

// WithTerminal returns a copy with the terminal growth rate pinned.
func (a Assumptions) WithTerminal(g float64) Assumptions {
	a.TerminalGrowth = &g
	return a
}

// validate checks the parameters without which no row can be produced.
func (a Assumptions) validate() error {
	if a.ForecastYears < 1 {
		return assumptionErr("forecast_years", float64(a.ForecastYears), "at least one forecast year is required")
	}
	if a.WACC <= -100 {
		return assumptionErr("wacc", a.WACC, "discount factor must be positive")
	}
	switch a.GrowthMode {
	case "", GrowthTiered, GrowthFlat:
	default:
		return assumptionErr("growth_mode", 0, "unknown growth mode %q", a.GrowthMode)
	}
	return nil
}

// DefaultAssumptions seeds the editable assumptions from the configured
// defaults and the ratios observed in the latest year.
func DefaultAssumptions(cfg config.ValuationConfig, r *Ratios) Assumptions {
	a := Assumptions{
		ForecastYears: cfg.ForecastYears,
		GrowthMode:    GrowthTiered,
		FlatGrowth:    cfg.Growth1to2,
		Growth1to2:    cfg.Growth1to2,
		Growth3to5:    cfg.Growth3to5,
		Growth6On:     cfg.Growth6On,
		CapexPct:      cfg.CapexPct,
		WCChangePct:   cfg.WCChangePct,
		WACC:          cfg.WACC,
	}
	if r != nil {
		a.EBITMargin = r.EBITMargin
		a.DepreciationPct = r.DepreciationPct
		a.TaxRate = r.TaxRate
		a.SharesOutstanding = r.SharesOutstanding
	}
	return a
}
