package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormulaKind is the closed set of fee formulas the engine understands.
// Parsing anything outside this set fails loudly; the engine never defaults
// a rule to zero.
type FormulaKind int

const (
	FormulaTiered FormulaKind = iota
	FormulaPerTransaction
	FormulaPerDispute
	FormulaVolumeBased
	FormulaAmountBased
)

func (k FormulaKind) String() string {
	switch k {
	case FormulaTiered:
		return "tiered"
	case FormulaPerTransaction:
		return "per_transaction"
	case FormulaPerDispute:
		return "per_dispute"
	case FormulaVolumeBased:
		return "volume_based"
	case FormulaAmountBased:
		return "amount_based"
	default:
		return "unknown"
	}
}

// ParseFormulaKind resolves the calculation-method label from a rule sheet.
func ParseFormulaKind(ruleID, s string) (FormulaKind, error) {
	switch s {
	case "tiered":
		return FormulaTiered, nil
	case "per_transaction", "per transaction":
		return FormulaPerTransaction, nil
	case "per_dispute", "per dispute":
		return FormulaPerDispute, nil
	case "volume_based", "volume based":
		return FormulaVolumeBased, nil
	case "amount_based", "amount based":
		return FormulaAmountBased, nil
	}
	return 0, &UnrecognizedFormulaTypeError{RuleID: ruleID, Kind: s}
}

// Tier is one breakpoint-delimited band of a tiered formula. UpTo is the
// cumulative unit count the band covers; a zero UpTo marks the unbounded
// final band.
type Tier struct {
	UpTo decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal `json:"rate"`
}

// Unbounded reports whether the tier has no upper breakpoint.
func (t Tier) Unbounded() bool { return t.UpTo.IsZero() }

// FeeRule is one configured fee formula. Immutable once parsed.
type FeeRule struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Kind          FormulaKind     `json:"kind"`
	Tiers         []Tier          `json:"tiers,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"` // zero = no cap
	Currency      string          `json:"currency"`
	Category      Category        `json:"category"`
	SubType       string          `json:"sub_type,omitempty"`
	EffectiveFrom time.Time       `json:"effective_from,omitempty"`
	EffectiveTo   time.Time       `json:"effective_to,omitempty"`
}

// InEffect reports whether the rule's effective period covers the given date.
// Zero bounds are open-ended.
func (r FeeRule) InEffect(d time.Time) bool {
	if !r.EffectiveFrom.IsZero() && d.Before(r.EffectiveFrom) {
		return false
	}
	if !r.EffectiveTo.IsZero() && d.After(r.EffectiveTo) {
		return false
	}
	return true
}
