package statements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatements(t *testing.T) *Statements {
	t.Helper()
	pl, err := NewTable(SectionProfitLoss, "Report Date", []string{"Mar-2022", "Mar-2023"}, []Row{
		{Label: "Sales", Values: []float64{900, 1000}},
		{Label: "Tax ", Values: []float64{30, 40}},
		{Label: "Sales", Values: []float64{1, 2}},
	})
	require.NoError(t, err)
	meta, err := NewTable(SectionMeta, "META", []string{"Unnamed_1"}, []Row{
		{Label: "Current Price", Values: []float64{250}},
	})
	require.NoError(t, err)

	s := &Statements{}
	s.Set(pl)
	s.Set(meta)
	return s
}

func TestNewTableRejectsRaggedRows(t *testing.T) {
	_, err := NewTable(SectionCashFlow, "Report Date", []string{"a", "b"}, []Row{
		{Label: "x", Values: []float64{1}},
	})
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	s := sampleStatements(t)

	v, ok := s.Latest(Sales)
	assert.True(t, ok)
	assert.Equal(t, 1000.0, v, "first occurrence of a repeated label wins")

	v, ok = s.Latest(Tax)
	assert.True(t, ok, "labels are matched trimmed")
	assert.Equal(t, 40.0, v)

	v, ok = s.Latest(CurrentPrice)
	assert.True(t, ok)
	assert.Equal(t, 250.0, v)

	v, ok = s.Latest(Depreciation)
	assert.False(t, ok)
	assert.Zero(t, v)

	_, ok = s.Latest(EquityShares)
	assert.False(t, ok, "missing table reads as missing item")

	values, ok := s.ProfitLoss.Row("sales")
	require.True(t, ok)
	assert.Equal(t, []float64{900, 1000}, values)
	assert.Equal(t, "Mar-2023", s.ProfitLoss.LatestColumn())
	assert.Equal(t, []string{"Sales", "Tax ", "Sales"}, s.ProfitLoss.Labels())
}

func TestLineItemMetadata(t *testing.T) {
	assert.Equal(t, "Other Mfr. Exp", OtherMfrExp.Label())
	assert.Equal(t, SectionBalanceSheet, EquityShares.Section())
	assert.Equal(t, SectionCashFlow, CashFromOperations.Section())
	assert.Len(t, CostItems, 7)
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections {
		got, ok := ParseSection(s.Slug())
		require.True(t, ok, s)
		assert.Equal(t, s, got)

		got, ok = ParseSection(string(s))
		require.True(t, ok, s)
		assert.Equal(t, s, got)
	}

	_, ok := ParseSection("income")
	assert.False(t, ok)
}
