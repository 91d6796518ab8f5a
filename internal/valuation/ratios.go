package valuation

import (
	"fmt"
	"math"

	"github.com/user/valuation-dashboard/internal/statements"
)

// Ratios are the observed latest-year figures that seed the assumptions.
type Ratios struct {
	BaseRevenue     float64 `json:"base_revenue"`
	EBIT            float64 `json:"ebit"`
	EBITMargin      float64 `json:"ebit_margin"`
	TaxRate         float64 `json:"tax_rate"`
	DepreciationPct float64 `json:"depreciation_pct"`
	SalesCAGR       float64 `json:"sales_cagr"`

	SharesOutstanding float64 `json:"shares_outstanding"`
	SharesSource      string  `json:"shares_source,omitempty"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`

	// Warnings name line items that were absent and read as zero.
	Warnings []string `json:"warnings,omitempty"`
	// Undetermined names ratios whose denominator was zero.
	Undetermined []string `json:"undetermined,omitempty"`
}

// DeriveRatios computes EBIT and its margins from the last column of the
// Annual P&L. Absent items count as zero and are reported, never fatal.
func DeriveRatios(st *statements.Statements) *Ratios {
	r := &Ratios{}

	latest := func(item statements.LineItem) float64 {
		v, ok := st.Latest(item)
		if !ok {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s not found in %s, using 0", item.Label(), item.Section()))
		}
		return v
	}

	sales := latest(statements.Sales)
	costs := 0.0
	for _, item := range statements.CostItems {
		costs += latest(item)
	}
	depreciation := latest(statements.Depreciation)
	tax := latest(statements.Tax)

	r.BaseRevenue = sales
	r.EBIT = sales - costs
	r.EBITMargin = r.percent("ebit_margin", r.EBIT, sales)
	r.TaxRate = r.percent("tax_rate", tax, r.EBIT)
	r.DepreciationPct = r.percent("depreciation_pct", depreciation, sales)
	r.SalesCAGR = r.salesCAGR(st)

	r.CurrentPrice, _ = st.Latest(statements.CurrentPrice)
	r.MarketCap, _ = st.Latest(statements.MarketCap)
	r.SharesOutstanding, r.SharesSource = defaultShares(st, r.CurrentPrice, r.MarketCap)
	if r.SharesOutstanding <= 0 {
		r.Undetermined = append(r.Undetermined, "shares_outstanding")
	}

	return r
}

// percent returns num/den*100, or 0 with the ratio marked undetermined.
func (r *Ratios) percent(name string, num, den float64) float64 {
	if den == 0 {
		r.Undetermined = append(r.Undetermined, name)
		return 0
	}
	return num / den * 100
}

// salesCAGR is the compound annual growth of Sales across the P&L periods.
func (r *Ratios) salesCAGR(st *statements.Statements) float64 {
	series, ok := st.Series(statements.Sales)
	if !ok {
		r.Undetermined = append(r.Undetermined, "sales_cagr")
		return 0
	}

	first := -1
	for i, v := range series {
		if v > 0 {
			first = i
			break
		}
	}
	last := len(series) - 1
	if first < 0 || last <= first || series[last] <= 0 {
		r.Undetermined = append(r.Undetermined, "sales_cagr")
		return 0
	}

	years := float64(last - first)
	return (math.Pow(series[last]/series[first], 1/years) - 1) * 100
}

// defaultShares walks the share-count sources in order of reliability.
// Counts are in crores, the unit the export uses for Number of shares.
func defaultShares(st *statements.Statements, price, marketCap float64) (float64, string) {
	if v, ok := st.Latest(statements.MetaShares); ok && v > 0 {
		return v, statements.MetaShares.Label()
	}
	if v, ok := st.Latest(statements.EquityShares); ok && v > 0 {
		return v / 1e7, statements.EquityShares.Label()
	}
	capital, okCapital := st.Latest(statements.EquityShareCapital)
	face, okFace := st.Latest(statements.FaceValue)
	if okCapital && okFace && capital > 0 && face > 0 {
		return capital / face, statements.EquityShareCapital.Label()
	}
	if price > 0 && marketCap > 0 {
		return marketCap / price, statements.MarketCap.Label()
	}
	return 0, ""
}
