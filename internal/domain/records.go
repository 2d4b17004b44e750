package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedCurrency is the currency every calculated and invoiced amount is
// reduced to before matching and aggregation.
const NormalizedCurrency = "INR"

// Category identifies one of the tabular inputs the engine consumes.
type Category string

const (
	CategorySummary       Category = "summary"
	CategoryCard          Category = "card"
	CategoryInternational Category = "international"
	CategoryDomestic      Category = "domestic"
	CategoryDispute       Category = "dispute"
	CategoryInvoice       Category = "invoice"
)

// TransactionCategories lists the categories that carry transaction rows,
// in the order they are processed.
var TransactionCategories = []Category{
	CategoryInternational,
	CategoryDomestic,
	CategoryDispute,
}

func (c Category) String() string { return string(c) }

// ParseCategory maps a free-form category label to a known Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategorySummary, CategoryCard, CategoryInternational, CategoryDomestic, CategoryDispute, CategoryInvoice:
		return Category(s), true
	}
	return "", false
}

// Table is the parsed tabular input contract: one header row plus data rows,
// already decoded from whatever file format the upstream collaborator handled.
type Table struct {
	Category Category   `json:"category"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Source   string     `json:"source"`
}

// ExchangeSnapshot is the read-only currency conversion input for a run.
type ExchangeSnapshot struct {
	Rate decimal.Decimal `json:"rate"`
	AsOf time.Time       `json:"as_of"`
}

// TransactionRecord is a single normalized transaction row, amount already
// converted to the normalized currency.
type TransactionRecord struct {
	Category  Category        `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
	SubType   string          `json:"sub_type,omitempty"`
}

// CardIssuanceRecord aggregates card issuance counts for one reporting period.
type CardIssuanceRecord struct {
	Period    string         `json:"period"` // YYYY-MM
	Count     int            `json:"count"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// InvoiceLineItem is one line of the counterparty invoice, amount already
// expressed in the normalized currency.
type InvoiceLineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Row         int             `json:"row"`
}
