package valuation

// EPSRow is one year of the earnings projection.
type EPSRow struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	EBIT         float64 `json:"ebit"`
	Depreciation float64 `json:"depreciation"`
	Interest     float64 `json:"interest"`
	PBT          float64 `json:"pbt"`
	Tax          float64 `json:"tax"`
	PAT          float64 `json:"pat"`
	EPS          float64 `json:"eps"`
}

// ProjectEPS projects earnings per share on the same revenue path as the DCF.
// Interest is approximated as revenue times WACC. With no shares the rows
// carry EPS 0 and an AssumptionError is returned alongside them.
func ProjectEPS(baseRevenue float64, a Assumptions) ([]EPSRow, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	rows := make([]EPSRow, 0, a.ForecastYears+1)
	revenue := baseRevenue
	for year := 0; year <= a.ForecastYears; year++ {
		if year > 0 {
			revenue *= 1 + a.GrowthFor(year)/100
		}

		row := EPSRow{
			Year:         year,
			Revenue:      revenue,
			EBIT:         revenue * a.EBITMargin / 100,
			Depreciation: revenue * a.DepreciationPct / 100,
			Interest:     revenue * a.WACC / 100,
		}
		row.PBT = row.EBIT - row.Interest
		row.Tax = row.PBT * a.TaxRate / 100
		row.PAT = row.PBT - row.Tax
		if a.SharesOutstanding > 0 {
			row.EPS = row.PAT / a.SharesOutstanding
		}
		rows = append(rows, row)
	}

	if a.SharesOutstanding <= 0 {
		return rows, assumptionErr("shares_outstanding", a.SharesOutstanding,
			"earnings per share needs a positive share count")
	}
	return rows, nil
}
