package valuation

import (
	"math"

	"github.com/user/valuation-dashboard/pkg/config"
)

// SensitivitySets are the discrete inputs varied by the grids.
type SensitivitySets struct {
	Growth         []float64 `json:"growth"`
	WACC           []float64 `json:"wacc"`
	TerminalGrowth []float64 `json:"terminal_growth"`
	EBITMargin     []float64 `json:"ebit_margin"`
}

// DefaultSensitivitySets are used when no sets are configured.
func DefaultSensitivitySets() SensitivitySets {
	return SensitivitySets{
		Growth:         []float64{5, 10, 14, 16, 25},
		WACC:           []float64{9, 10, 11, 12, 13},
		TerminalGrowth: []float64{3, 4, 5, 6},
		EBITMargin:     []float64{10, 15, 20, 25, 30},
	}
}

// SetsFromConfig fills any empty configured set with its default.
func SetsFromConfig(cfg config.SensitivityConfig) SensitivitySets {
	sets := DefaultSensitivitySets()
	if len(cfg.Growth) > 0 {
		sets.Growth = cfg.Growth
	}
	if len(cfg.WACC) > 0 {
		sets.WACC = cfg.WACC
	}
	if len(cfg.TerminalGrowth) > 0 {
		sets.TerminalGrowth = cfg.TerminalGrowth
	}
	if len(cfg.EBITMargin) > 0 {
		sets.EBITMargin = cfg.EBITMargin
	}
	return sets
}

// GridCell is one independent DCF run. Invalid cells carry no numbers.
type GridCell struct {
	FairValue     float64 `json:"fair_value"`
	TerminalShare float64 `json:"terminal_share"`
	Valid         bool    `json:"valid"`
}

// GrowthPoint is a row of the growth grid.
type GrowthPoint struct {
	Growth float64 `json:"growth"`
	GridCell
}

// Matrix holds fair values for every pairing of two varied inputs.
type Matrix struct {
	RowInput string       `json:"row_input"`
	ColInput string       `json:"col_input"`
	Rows     []float64    `json:"rows"`
	Cols     []float64    `json:"cols"`
	Cells    [][]GridCell `json:"cells"`
}

// SensitivityResult bundles the three grids.
type SensitivityResult struct {
	Growth         []GrowthPoint `json:"growth"`
	WACCTerminal   Matrix        `json:"wacc_terminal"`
	MarginTerminal Matrix        `json:"margin_terminal"`
}

// Sensitivity reruns the DCF across the configured input sets. The growth
// grid overrides growth for years 1 to 5; the matrices vary WACC and EBIT
// margin against terminal growth.
func Sensitivity(baseRevenue float64, a Assumptions, sets SensitivitySets) *SensitivityResult {
	out := &SensitivityResult{}

	for _, g := range sets.Growth {
		run := a
		run.GrowthMode = GrowthTiered
		run.Growth1to2 = g
		run.Growth3to5 = g
		out.Growth = append(out.Growth, GrowthPoint{Growth: g, GridCell: evaluate(baseRevenue, run)})
	}

	out.WACCTerminal = matrix("wacc", "terminal_growth", sets.WACC, sets.TerminalGrowth,
		func(wacc, g float64) GridCell {
			run := a.WithTerminal(g)
			run.WACC = wacc
			return evaluate(baseRevenue, run)
		})

	out.MarginTerminal = matrix("ebit_margin", "terminal_growth", sets.EBITMargin, sets.TerminalGrowth,
		func(margin, g float64) GridCell {
			run := a.WithTerminal(g)
			run.EBITMargin = margin
			return evaluate(baseRevenue, run)
		})

	return out
}

func matrix(rowInput, colInput string, rows, cols []float64, cell func(r, c float64) GridCell) Matrix {
	m := Matrix{
		RowInput: rowInput,
		ColInput: colInput,
		Rows:     rows,
		Cols:     cols,
		Cells:    make([][]GridCell, len(rows)),
	}
	for i, r := range rows {
		m.Cells[i] = make([]GridCell, len(cols))
		for j, c := range cols {
			m.Cells[i][j] = cell(r, c)
		}
	}
	return m
}

// evaluate runs one cell. Any assumption error or non-finite result marks
// the cell invalid.
func evaluate(baseRevenue float64, a Assumptions) GridCell {
	res, err := ProjectDCF(baseRevenue, a)
	if err != nil || res == nil || res.Valuation == nil {
		return GridCell{}
	}
	v := res.Valuation
	if math.IsNaN(v.FairValuePerShare) || math.IsInf(v.FairValuePerShare, 0) {
		return GridCell{}
	}
	return GridCell{FairValue: v.FairValuePerShare, TerminalShare: v.TerminalShare, Valid: true}
}
