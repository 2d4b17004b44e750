package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RunState tracks a reconciliation run through its pipeline stages.
type RunState string

const (
	RunInitialized RunState = "INITIALIZED"
	RunNormalizing RunState = "NORMALIZING"
	RunCalculating RunState = "CALCULATING"
	RunMatching    RunState = "MATCHING"
	RunAggregating RunState = "AGGREGATING"
	RunComplete    RunState = "COMPLETE"
	RunFailed      RunState = "FAILED"
)

// CalculatedLineItem is one fee line produced by evaluating a rule.
// Amount is always INR-normalized. Never mutated after creation.
type CalculatedLineItem struct {
	FeeType     string          `json:"fee_type"`
	Amount      decimal.Decimal `json:"amount"`
	RuleID      string          `json:"rule_id"`
	Category    Category        `json:"category"`
	RecordCount int             `json:"record_count"`
	Period      string          `json:"period,omitempty"`
}

// MatchStatus classifies one MatchResult.
type MatchStatus string

const (
	StatusMatched             MatchStatus = "matched"
	StatusUnmatchedCalculated MatchStatus = "unmatched-calculated"
	StatusUnmatchedInvoice    MatchStatus = "unmatched-invoice"
)

// MatchResult pairs at most one calculated line with at most one invoice
// line. A side is nil when the item on that side found no counterpart.
type MatchResult struct {
	Calculated  *CalculatedLineItem `json:"calculated,omitempty"`
	Invoice     *InvoiceLineItem    `json:"invoice,omitempty"`
	Score       float64             `json:"score"`
	Status      MatchStatus         `json:"status"`
	AmountDiff  decimal.Decimal     `json:"amount_diff"`
	ExactAmount bool                `json:"exact_amount"`
	PercentDiff Percentage          `json:"percent_diff"`
}

// Percentage is a percentage value that is either defined or explicitly
// "undefined" (zero denominator). It never carries NaN.
type Percentage struct {
	Value   decimal.Decimal
	Defined bool
}

// DefinedPercentage wraps a computed percentage value.
func DefinedPercentage(v decimal.Decimal) Percentage {
	return Percentage{Value: v, Defined: true}
}

// UndefinedPercentage marks a percentage whose denominator was zero.
func UndefinedPercentage() Percentage {
	return Percentage{}
}

// Display renders the percentage for operators, e.g. "95.24%" or "undefined".
func (p Percentage) Display() string {
	if !p.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%s%%", p.Value.StringFixed(2))
}

// MarshalJSON emits the display form so downstream consumers never see NaN.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Display())
}

// Diagnostic is one non-fatal issue surfaced on the report.
type Diagnostic struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Category Category `json:"category,omitempty"`
}

// Diagnostic kinds.
const (
	DiagMissingFile         = "missing_required_file"
	DiagAmbiguousMapping    = "ambiguous_column_mapping"
	DiagColumnMapping       = "column_mapping"
	DiagCurrencyConversion  = "currency_conversion"
	DiagUnrecognizedFormula = "unrecognized_formula_type"
	DiagEmptyDataset        = "empty_dataset"
	DiagDegradedCategory    = "degraded_category"
	DiagFormulaError        = "formula_error"
	DiagMatchingAmbiguity   = "matching_ambiguity"
)

// ReportSummary carries the headline reconciliation metrics.
type ReportSummary struct {
	AmountReconciledPct  Percentage      `json:"amount_reconciled_pct"`
	FeeReconciledPct     Percentage      `json:"fee_reconciled_pct"`
	MatchPct             Percentage      `json:"match_pct"`
	CalculatedTotal      decimal.Decimal `json:"calculated_total"`
	InvoiceTotal         decimal.Decimal `json:"invoice_total"`
	MatchedItems         int             `json:"matched_items"`
	TotalInvoiceItems    int             `json:"total_invoice_items"`
	TotalCalculatedItems int             `json:"total_calculated_items"`
	ExactMatchItems      int             `json:"exact_match_items"`
	TotalFeeMappings     int             `json:"total_fee_mappings"`
}

// PeriodCount is the card issuance volume for one reporting period.
type PeriodCount struct {
	Period string `json:"period"`
	Cards  int    `json:"cards"`
}

// CardSummary summarizes card issuance across the detected periods.
type CardSummary struct {
	TotalCards int           `json:"total_cards"`
	Monthly    []PeriodCount `json:"monthly,omitempty"`
}

// CategoryOverview is the per-category transaction volume and value, plus the
// total of fees calculated for the category, all in the normalized currency.
type CategoryOverview struct {
	Category        Category        `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Volume          int             `json:"volume"`
	CalculatedTotal decimal.Decimal `json:"calculated_total"`
}

// ReconciliationReport is the only artifact a run hands to collaborators.
type ReconciliationReport struct {
	RunID       string             `json:"run_id"`
	State       RunState           `json:"state"`
	Degraded    bool               `json:"degraded"`
	Summary     ReportSummary      `json:"summary"`
	Card        *CardSummary       `json:"card,omitempty"`
	Overview    []CategoryOverview `json:"overview,omitempty"`
	Matches     []MatchResult      `json:"matches"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
}
