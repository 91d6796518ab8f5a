// Package sheet loads the "Data Sheet" export into a positional grid and
// extracts its labeled statement blocks.
package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind classifies a raw cell.
type CellKind int

const (
	Blank CellKind = iota
	Number
	Text
	Date
)

// Cell is one positional value of the raw grid.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
	Time time.Time
}

// IsBlank reports whether the cell holds nothing.
func (c Cell) IsBlank() bool {
	return c.Kind == Blank
}

// String returns the cell's display form.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Text:
		return c.Text
	case Date:
		return c.Time.Format("2006-01-02")
	}
	return ""
}

// Float returns the numeric value, or zero for anything that is not a number.
func (c Cell) Float() float64 {
	if c.Kind == Number {
		return c.Num
	}
	return 0
}

// dateLayouts are tried in order when a cell is not a plain number.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"02-01-2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-06",
	"02-Jan-06",
	"Jan-06",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
}

// ParseCell classifies a raw string value.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: Blank}
	}
	if v, ok := parseNumber(s); ok {
		return Cell{Kind: Number, Num: v}
	}
	if t, ok := parseDate(s); ok {
		return Cell{Kind: Date, Time: t}
	}
	return Cell{Kind: Text, Text: s}
}

// parseNumber parses a numeric cell, tolerating thousands separators, the
// rupee sign and accounting-style parentheses.
func parseNumber(s string) (float64, bool) {
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
