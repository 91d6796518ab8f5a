// Package statements holds the financial tables extracted from an uploaded
// data sheet and the typed line-item lookups the valuation model reads.
package statements

import (
	"fmt"
	"strings"
)

// Section names one of the blocks of the data sheet.
type Section string

const (
	SectionProfitLoss   Section = "Annual P&L"
	SectionBalanceSheet Section = "Balance Sheet"
	SectionCashFlow     Section = "Cash Flow"
	SectionQuarters     Section = "Quarterly Results"
	SectionMeta         Section = "Meta"
)

// Sections lists every block in sheet order.
var Sections = []Section{
	SectionProfitLoss,
	SectionBalanceSheet,
	SectionCashFlow,
	SectionQuarters,
	SectionMeta,
}

var slugs = map[string]Section{
	"profit-loss":   SectionProfitLoss,
	"balance-sheet": SectionBalanceSheet,
	"cash-flow":     SectionCashFlow,
	"quarters":      SectionQuarters,
	"meta":          SectionMeta,
}

// Slug returns the URL form of the section name.
func (s Section) Slug() string {
	for slug, section := range slugs {
		if section == s {
			return slug
		}
	}
	return ""
}

// ParseSection accepts a slug such as "profit-loss" or the display name.
func ParseSection(name string) (Section, bool) {
	name = strings.TrimSpace(name)
	if s, ok := slugs[strings.ToLower(name)]; ok {
		return s, true
	}
	for _, s := range Sections {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// Row is one labeled line of a table.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// FinancialTable is a named block of per-period values. Every row holds
// exactly len(Columns) values.
type FinancialTable struct {
	Name    Section  `json:"name"`
	Index   string   `json:"index"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`

	byLabel map[string]int
	byFold  map[string]int
}

// NewTable validates row widths and builds the label index. When a label
// repeats, lookups resolve to its first occurrence.
func NewTable(name Section, index string, columns []string, rows []Row) (*FinancialTable, error) {
	t := &FinancialTable{
		Name:    name,
		Index:   index,
		Columns: columns,
		Rows:    rows,
		byLabel: make(map[string]int, len(rows)),
		byFold:  make(map[string]int, len(rows)),
	}
	for i, row := range rows {
		if len(row.Values) != len(columns) {
			return nil, fmt.Errorf("table %s: row %q has %d values, want %d",
				name, row.Label, len(row.Values), len(columns))
		}
		key := strings.TrimSpace(row.Label)
		if _, ok := t.byLabel[key]; !ok {
			t.byLabel[key] = i
		}
		fold := strings.ToLower(key)
		if _, ok := t.byFold[fold]; !ok {
			t.byFold[fold] = i
		}
	}
	return t, nil
}

// Row returns the values for a label. Matching is exact on the trimmed label
// first, then case-insensitive.
func (t *FinancialTable) Row(label string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	key := strings.TrimSpace(label)
	if i, ok := t.byLabel[key]; ok {
		return t.Rows[i].Values, true
	}
	if i, ok := t.byFold[strings.ToLower(key)]; ok {
		return t.Rows[i].Values, true
	}
	return nil, false
}

// Latest returns the value in the most recent (last) column.
func (t *FinancialTable) Latest(label string) (float64, bool) {
	values, ok := t.Row(label)
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

// Labels returns row labels in sheet order.
func (t *FinancialTable) Labels() []string {
	if t == nil {
		return nil
	}
	labels := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		labels[i] = row.Label
	}
	return labels
}

// LatestColumn returns the label of the most recent period.
func (t *FinancialTable) LatestColumn() string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[len(t.Columns)-1]
}
