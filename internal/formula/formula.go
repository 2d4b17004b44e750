// Package formula evaluates one fee rule against one data subset. Evaluation
// is a pure function of (rule, dataset, exchange rate); the closed FormulaKind
// set is handled exhaustively and an unknown kind is an error, never zero.
package formula

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// Dataset is the slice of normalized data a rule applies to. Exactly one of
// the two collections is populated for a given rule category.
type Dataset struct {
	Transactions []domain.TransactionRecord
	CardIssuance []domain.CardIssuanceRecord
}

// Evaluate computes the fee a rule produces over the dataset. Unit-rate
// formulas price in the rule's currency and are converted with the exchange
// rate; amount-based formulas inherit the already-normalized transaction
// amounts. The result is rounded half-up to two decimals exactly once.
func Evaluate(rule domain.FeeRule, ds Dataset, rate decimal.Decimal) ([]domain.CalculatedLineItem, error) {
	transactions := filterBySubType(ds.Transactions, rule.SubType)
	units := unitCount(transactions, ds.CardIssuance)

	var cost decimal.Decimal
	switch rule.Kind {
	case domain.FormulaTiered:
		if len(rule.Tiers) == 0 {
			return nil, fmt.Errorf("rule %s is tiered but declares no tiers", rule.ID)
		}
		cost = tieredCost(rule.Tiers, decimal.NewFromInt(int64(units)))
	case domain.FormulaPerTransaction, domain.FormulaPerDispute, domain.FormulaVolumeBased:
		cost = decimal.NewFromInt(int64(units)).Mul(rule.Rate)
	case domain.FormulaAmountBased:
		total := decimal.Zero
		for _, tx := range transactions {
			total = total.Add(tx.Amount)
		}
		cost = total.Mul(rule.Rate)
	default:
		return nil, &domain.UnrecognizedFormulaTypeError{RuleID: rule.ID, Kind: rule.Kind.String()}
	}

	cost = clamp(cost, rule.MinAmount, rule.MaxAmount)

	// Amount-based fees are fractions of normalized amounts and carry no
	// rule-currency unit to convert.
	if rule.Kind != domain.FormulaAmountBased && rule.Currency != domain.NormalizedCurrency {
		if !rate.IsPositive() {
			return nil, &domain.CurrencyConversionError{
				Category: rule.Category,
				Reason:   fmt.Sprintf("rule %s prices in %s but no valid exchange rate was supplied", rule.ID, rule.Currency),
			}
		}
		cost = cost.Mul(rate)
	}

	return []domain.CalculatedLineItem{{
		FeeType:     rule.Description,
		Amount:      cost.Round(2),
		RuleID:      rule.ID,
		Category:    rule.Category,
		RecordCount: units,
		Period:      issuancePeriod(ds.CardIssuance),
	}}, nil
}

// tieredCost walks the bands in breakpoint order, clipping the unit count to
// each band's remaining capacity. Parsed tier sets always end in an unbounded
// band, so every unit lands in some band.
func tieredCost(tiers []domain.Tier, units decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	remaining := units
	prev := decimal.Zero
	for _, tier := range tiers {
		if !remaining.IsPositive() {
			break
		}
		span := remaining
		if !tier.Unbounded() {
			capacity := tier.UpTo.Sub(prev)
			if capacity.LessThan(span) {
				span = capacity
			}
			prev = tier.UpTo
		}
		total = total.Add(span.Mul(tier.Rate))
		remaining = remaining.Sub(span)
	}
	return total
}

func clamp(cost, min, max decimal.Decimal) decimal.Decimal {
	if min.IsPositive() && cost.LessThan(min) {
		return min
	}
	if max.IsPositive() && cost.GreaterThan(max) {
		return max
	}
	return cost
}

func filterBySubType(records []domain.TransactionRecord, subType string) []domain.TransactionRecord {
	if subType == "" {
		return records
	}
	var out []domain.TransactionRecord
	for _, r := range records {
		if r.SubType == subType {
			out = append(out, r)
		}
	}
	return out
}

func unitCount(transactions []domain.TransactionRecord, issuance []domain.CardIssuanceRecord) int {
	if len(issuance) > 0 {
		total := 0
		for _, rec := range issuance {
			total += rec.Count
		}
		return total
	}
	return len(transactions)
}

func issuancePeriod(issuance []domain.CardIssuanceRecord) string {
	if len(issuance) == 0 {
		return ""
	}
	first, last := issuance[0].Period, issuance[len(issuance)-1].Period
	if first == last {
		return first
	}
	return first + ".." + last
}
