// Package sheettest builds Data Sheet fixtures for tests.
package sheettest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Rows returns a small but complete Data Sheet. The latest year gives
// EBIT 300 on Sales 1000, Tax 75, Depreciation 50 and 10 crore shares.
func Rows() [][]string {
	blank := []string{"", "", "", "", ""}
	return [][]string{
		{"COMPANY NAME", "ACME INDUSTRIES LTD"},
		blank,
		{"META"},
		{"Number of shares", "10"},
		{"Face Value", "10"},
		{"Current Price", "250"},
		{"Market Capitalization", "2500"},
		blank,
		{"PROFIT & LOSS"},
		{"Report Date", "2021-03-31", "2022-03-31", "2023-03-31", ""},
		{"Sales", "800", "900", "1,000"},
		{"Raw Material Cost", "300", "340", "400"},
		{"Change in Inventory", "10", "-5", "20"},
		{"Power and Fuel", "20", "25", "30"},
		{"Other Mfr. Exp", "30", "35", "40"},
		{"Employee Cost", "100", "110", "120"},
		{"Selling and admin", "50", "55", "60"},
		{"Other Expenses", "20", "25", "30"},
		{"Other Income", "5", "6", "7"},
		{"Depreciation", "30", "40", "50"},
		{"Interest", "10", "10", ""},
		{"Profit before tax", "215", "263", "307"},
		{"Tax", "60", "70", "75"},
		{"Net profit", "155", "193", "232"},
		blank,
		{"Quarters"},
		{"Report Date", "2023-06-30", "2023-09-30"},
		{"Sales", "260", "270"},
		{"Net profit", "60", "62"},
		blank,
		{"BALANCE SHEET"},
		{"Report Date", "2021-03-31", "2022-03-31", "2023-03-31"},
		{"Equity Share Capital", "100", "100", "100"},
		{"Reserves", "900", "1050", "1250"},
		{"No. of Equity Shares", "100000000", "100000000", "100000000"},
		blank,
		{"CASH FLOW:"},
		{"Report Date", "2021-03-31", "2022-03-31", "2023-03-31"},
		{"Cash from Operating Activity", "200", "220", "260"},
		blank,
	}
}

// XLSX writes rows into the "Data Sheet" of a new workbook, storing numeric
// strings as numbers.
func XLSX(tb testing.TB, sheetName string, rows [][]string) []byte {
	tb.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		tb.Fatalf("failed to rename sheet: %v", err)
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				tb.Fatalf("bad coordinates: %v", err)
			}
			var value interface{} = v
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				value = n
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				tb.Fatalf("failed to set %s: %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		tb.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// Formatted values of the FormattedXLSX profit and loss block.
var (
	FormattedDates = []time.Time{
		time.Date(2021, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2022, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	FormattedSales = []float64{1000.25, 987.654, 1234.5678}
)

// FormattedXLSX writes a profit and loss block whose header holds real date
// cells (default, built-in 14 and custom "mmm-yy" formats) and whose sales
// figures carry rounding display formats ("0.0" and "#,##0").
func FormattedXLSX(tb testing.TB, sheetName string) []byte {
	tb.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		tb.Fatalf("failed to rename sheet: %v", err)
	}

	monthYear := "mmm-yy"
	oneDecimal := "0.0"
	styles := make([]int, 0, 4)
	for _, st := range []*excelize.Style{
		{NumFmt: 14},
		{CustomNumFmt: &monthYear},
		{CustomNumFmt: &oneDecimal},
		{NumFmt: 3},
	} {
		id, err := f.NewStyle(st)
		if err != nil {
			tb.Fatalf("failed to create style: %v", err)
		}
		styles = append(styles, id)
	}

	set := func(cell string, value interface{}, style int) {
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			tb.Fatalf("failed to set %s: %v", cell, err)
		}
		if style == 0 {
			return
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			tb.Fatalf("failed to style %s: %v", cell, err)
		}
	}

	set("A1", "PROFIT & LOSS", 0)
	set("A2", "Report Date", 0)
	set("B2", FormattedDates[0], 0)
	set("C2", FormattedDates[1], styles[1])
	set("D2", FormattedDates[2], styles[0])
	set("A3", "Sales", 0)
	set("B3", FormattedSales[0], 0)
	set("C3", FormattedSales[1], styles[2])
	set("D3", FormattedSales[2], styles[3])

	buf, err := f.WriteToBuffer()
	if err != nil {
		tb.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// CSV encodes rows as a CSV export.
func CSV(tb testing.TB, rows [][]string) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		tb.Fatalf("failed to write CSV: %v", err)
	}
	return buf.Bytes()
}
