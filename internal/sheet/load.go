package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DataSheetName is the worksheet the export keeps its statements in.
const DataSheetName = "Data Sheet"

// ErrSourceFormat marks an upload that cannot be read at all. Nothing
// downstream runs on such an input.
var ErrSourceFormat = errors.New("unreadable source spreadsheet")

// Load picks a reader from the file extension.
func Load(filename string, r io.Reader) (*RawSheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(r)
	case ".csv":
		return LoadCSV(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrSourceFormat, filepath.Ext(filename))
	}
}

// LoadXLSX reads the Data Sheet of a workbook.
func LoadXLSX(r io.Reader) (*RawSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", ErrSourceFormat, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(DataSheetName)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: workbook has no sheet named %q (sheets: %s)",
			ErrSourceFormat, DataSheetName, strings.Join(f.GetSheetList(), ", "))
	}

	// Raw values keep full precision; display formats such as #,##0 would
	// round the figures.
	rows, err := f.GetRows(DataSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %w", ErrSourceFormat, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	cells := make([][]Cell, len(rows))
	for r, row := range rows {
		cells[r] = make([]Cell, len(row))
		for c, v := range row {
			cell := ParseCell(v)
			if cell.Kind == Number && isDateCell(f, dateStyles, c+1, r+1) {
				if t, err := excelize.ExcelDateToTime(cell.Num, date1904); err == nil {
					cell = Cell{Kind: Date, Time: t}
				}
			}
			cells[r][c] = cell
		}
	}

	return NewRawSheet(cells), nil
}

// isDateCell reports whether the cell at (col, row), both 1-based, carries a
// date number format. Results are cached per style index.
func isDateCell(f *excelize.File, cache map[int]bool, col, row int) bool {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	idx, err := f.GetCellStyle(DataSheetName, name)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := cache[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = isDateNumFmt(style.NumFmt)
		}
	}
	cache[idx] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id renders a date.
func isDateNumFmt(id int) bool {
	return (14 <= id && id <= 17) || id == 22 || (27 <= id && id <= 36) || (50 <= id && id <= 58)
}

// isDateFormat reports whether a custom format code renders a date: it has a
// year or day token outside quoted literals and bracketed sections.
func isDateFormat(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == '\\':
			i++
		case ch == 'y' || ch == 'Y' || ch == 'd' || ch == 'D':
			return true
		}
	}
	return false
}

// LoadCSV reads a CSV export of the Data Sheet.
func LoadCSV(r io.Reader) (*RawSheet, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV row: %w", ErrSourceFormat, err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty CSV", ErrSourceFormat)
	}

	return FromStrings(rows), nil
}
