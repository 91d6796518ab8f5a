package sheet

// RawSheet is an untyped grid with no header assumed. It is never modified
// after construction.
type RawSheet struct {
	rows  [][]Cell
	width int
}

// NewRawSheet copies rows into a RawSheet. Rows may be ragged.
func NewRawSheet(rows [][]Cell) *RawSheet {
	s := &RawSheet{rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		s.rows[i] = append([]Cell(nil), row...)
		if len(row) > s.width {
			s.width = len(row)
		}
	}
	return s
}

// FromStrings classifies every string with ParseCell.
func FromStrings(rows [][]string) *RawSheet {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = ParseCell(v)
		}
	}
	return NewRawSheet(cells)
}

// NumRows returns the number of rows.
func (s *RawSheet) NumRows() int {
	return len(s.rows)
}

// Width returns the length of the widest row.
func (s *RawSheet) Width() int {
	return s.width
}

// Cell returns the cell at (row, col); out-of-range positions are blank.
func (s *RawSheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return Cell{Kind: Blank}
	}
	return s.rows[row][col]
}

// Row returns a padded copy of the first width cells of a row.
func (s *RawSheet) Row(row, width int) []Cell {
	out := make([]Cell, width)
	for c := 0; c < width; c++ {
		out[c] = s.Cell(row, c)
	}
	return out
}

// rowBlank reports whether the first width cells of a row are all blank.
func (s *RawSheet) rowBlank(row, width int) bool {
	for c := 0; c < width; c++ {
		if !s.Cell(row, c).IsBlank() {
			return false
		}
	}
	return true
}
