package statements

// LineItem enumerates every row label the valuation model reads.
type LineItem int

const (
	Sales LineItem = iota
	RawMaterialCost
	ChangeInInventory
	PowerAndFuel
	OtherMfrExp
	EmployeeCost
	SellingAndAdmin
	OtherExpenses
	Depreciation
	Interest
	Tax
	NetProfit
	EquityShares
	EquityShareCapital
	CashFromOperations
	CurrentPrice
	MarketCap
	MetaShares
	FaceValue
)

type itemDef struct {
	label   string
	section Section
}

var itemDefs = map[LineItem]itemDef{
	Sales:              {"Sales", SectionProfitLoss},
	RawMaterialCost:    {"Raw Material Cost", SectionProfitLoss},
	ChangeInInventory:  {"Change in Inventory", SectionProfitLoss},
	PowerAndFuel:       {"Power and Fuel", SectionProfitLoss},
	OtherMfrExp:        {"Other Mfr. Exp", SectionProfitLoss},
	EmployeeCost:       {"Employee Cost", SectionProfitLoss},
	SellingAndAdmin:    {"Selling and admin", SectionProfitLoss},
	OtherExpenses:      {"Other Expenses", SectionProfitLoss},
	Depreciation:       {"Depreciation", SectionProfitLoss},
	Interest:           {"Interest", SectionProfitLoss},
	Tax:                {"Tax", SectionProfitLoss},
	NetProfit:          {"Net profit", SectionProfitLoss},
	EquityShares:       {"No. of Equity Shares", SectionBalanceSheet},
	EquityShareCapital: {"Equity Share Capital", SectionBalanceSheet},
	CashFromOperations: {"Cash from Operating Activity", SectionCashFlow},
	CurrentPrice:       {"Current Price", SectionMeta},
	MarketCap:          {"Market Capitalization", SectionMeta},
	MetaShares:         {"Number of shares", SectionMeta},
	FaceValue:          {"Face Value", SectionMeta},
}

// CostItems are the operating costs subtracted from Sales to reach EBIT.
var CostItems = []LineItem{
	RawMaterialCost,
	ChangeInInventory,
	PowerAndFuel,
	OtherMfrExp,
	EmployeeCost,
	SellingAndAdmin,
	OtherExpenses,
}

// Label returns the sheet label of the item.
func (l LineItem) Label() string {
	return itemDefs[l].label
}

// Section returns the block the item lives in.
func (l LineItem) Section() Section {
	return itemDefs[l].section
}

func (l LineItem) String() string {
	return l.Label()
}

// Statements is the set of tables extracted from one upload.
type Statements struct {
	ProfitLoss   *FinancialTable `json:"profit_loss"`
	BalanceSheet *FinancialTable `json:"balance_sheet"`
	CashFlow     *FinancialTable `json:"cash_flow"`
	Quarters     *FinancialTable `json:"quarters"`
	Meta         *FinancialTable `json:"meta"`
}

// Table returns the table for a section, or nil.
func (s *Statements) Table(section Section) *FinancialTable {
	if s == nil {
		return nil
	}
	switch section {
	case SectionProfitLoss:
		return s.ProfitLoss
	case SectionBalanceSheet:
		return s.BalanceSheet
	case SectionCashFlow:
		return s.CashFlow
	case SectionQuarters:
		return s.Quarters
	case SectionMeta:
		return s.Meta
	}
	return nil
}

// Set stores a table under its section name.
func (s *Statements) Set(t *FinancialTable) {
	switch t.Name {
	case SectionProfitLoss:
		s.ProfitLoss = t
	case SectionBalanceSheet:
		s.BalanceSheet = t
	case SectionCashFlow:
		s.CashFlow = t
	case SectionQuarters:
		s.Quarters = t
	case SectionMeta:
		s.Meta = t
	}
}

// Latest returns the most recent value of an item. A missing item reads as
// zero with ok=false; callers decide whether that deserves a warning.
func (s *Statements) Latest(item LineItem) (value float64, ok bool) {
	return s.Table(item.Section()).Latest(item.Label())
}

// Series returns every period value of an item, or nil when absent.
func (s *Statements) Series(item LineItem) ([]float64, bool) {
	return s.Table(item.Section()).Row(item.Label())
}
