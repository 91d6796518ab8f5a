package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/valuation-dashboard/internal/statements"
)

// ErrMissingSection is matched by every MissingSectionError.
var ErrMissingSection = errors.New("missing sheet section")

// MissingSectionError reports a sentinel label absent from column 0.
type MissingSectionError struct {
	Section  statements.Section
	Sentinel string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("section %s not found: no row labeled %q in the first column", e.Section, e.Sentinel)
}

// Is lets errors.Is(err, ErrMissingSection) match.
func (e *MissingSectionError) Is(target error) bool {
	return target == ErrMissingSection
}

// BlockSpec describes where a table lives relative to its sentinel row.
type BlockSpec struct {
	Section      statements.Section
	Sentinel     string
	HeaderOffset int
	// MaxColumns caps the columns read, label column included. Zero reads all.
	MaxColumns int
}

// StandardBlocks are the five blocks of the Data Sheet.
var StandardBlocks = []BlockSpec{
	{Section: statements.SectionProfitLoss, Sentinel: "PROFIT & LOSS", HeaderOffset: 1},
	{Section: statements.SectionBalanceSheet, Sentinel: "BALANCE SHEET", HeaderOffset: 1},
	{Section: statements.SectionCashFlow, Sentinel: "CASH FLOW:", HeaderOffset: 1},
	{Section: statements.SectionQuarters, Sentinel: "Quarters", HeaderOffset: 1},
	{Section: statements.SectionMeta, Sentinel: "META", HeaderOffset: 0, MaxColumns: 2},
}

// findSentinel returns the first row whose first cell equals label.
func findSentinel(raw *RawSheet, label string) (int, bool) {
	for r := 0; r < raw.NumRows(); r++ {
		if strings.TrimSpace(raw.Cell(r, 0).String()) == label {
			return r, true
		}
	}
	return 0, false
}

// ExtractBlock pulls one labeled block out of the grid.
//
// Data rows run from just below the header row up to, not including, the
// first all-blank row. A period column is dropped when its first data row is
// blank; only that row is inspected. Remaining blank or non-numeric cells
// read as 0, so a missing figure is indistinguishable from a true zero.
func ExtractBlock(raw *RawSheet, spec BlockSpec) (*statements.FinancialTable, error) {
	sentinelRow, ok := findSentinel(raw, spec.Sentinel)
	if !ok {
		return nil, &MissingSectionError{Section: spec.Section, Sentinel: spec.Sentinel}
	}

	headerRow := sentinelRow + spec.HeaderOffset
	if headerRow >= raw.NumRows() {
		return nil, fmt.Errorf("%w: section %s has no header row below %q",
			ErrSourceFormat, spec.Section, spec.Sentinel)
	}

	width := raw.Width()
	if spec.MaxColumns > 0 && spec.MaxColumns < width {
		width = spec.MaxColumns
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: section %s is empty", ErrSourceFormat, spec.Section)
	}

	headers := NormalizeHeaders(raw.Row(headerRow, width))

	var dataRows []int
	for r := headerRow + 1; r < raw.NumRows(); r++ {
		if raw.rowBlank(r, width) {
			break
		}
		dataRows = append(dataRows, r)
	}

	// Column 0 is the label axis and always kept.
	var keep []int
	for c := 1; c < width; c++ {
		if len(dataRows) > 0 && raw.Cell(dataRows[0], c).IsBlank() {
			continue
		}
		keep = append(keep, c)
	}

	columns := make([]string, len(keep))
	for i, c := range keep {
		columns[i] = headers[c]
	}

	rows := make([]statements.Row, 0, len(dataRows))
	for _, r := range dataRows {
		values := make([]float64, len(keep))
		for i, c := range keep {
			values[i] = raw.Cell(r, c).Float()
		}
		rows = append(rows, statements.Row{
			Label:  strings.TrimSpace(raw.Cell(r, 0).String()),
			Values: values,
		})
	}

	return statements.NewTable(spec.Section, headers[0], columns, rows)
}

// ExtractStatements extracts every standard block. Each missing section is
// reported on its own; the returned error joins them.
func ExtractStatements(raw *RawSheet, maxColumns int) (*statements.Statements, error) {
	out := &statements.Statements{}
	var errs []error
	for _, spec := range StandardBlocks {
		if spec.MaxColumns == 0 {
			spec.MaxColumns = maxColumns
		}
		table, err := ExtractBlock(raw, spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Set(table)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// CompanyNameLabel heads the row naming the company.
const CompanyNameLabel = "COMPANY NAME"

// CompanyName returns the value next to the COMPANY NAME label, if present.
func CompanyName(raw *RawSheet) string {
	r, ok := findSentinel(raw, CompanyNameLabel)
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw.Cell(r, 1).String())
}

// MissingSections lists the sections named by MissingSectionErrors in err.
func MissingSections(err error) []statements.Section {
	var out []statements.Section
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case *MissingSectionError:
			out = append(out, x.Section)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
