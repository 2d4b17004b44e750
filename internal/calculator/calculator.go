// Package calculator runs every fee rule against the dataset it applies to
// and concatenates the results into the run's calculated ledger. Rules whose
// inputs are degraded or missing are skipped with a diagnostic so the rest of
// the run still computes.
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/formula"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/normalizer"
)

// Calculate evaluates all rules in declaration order. The returned ledger
// order is deterministic for identical inputs.
func Calculate(data *normalizer.NormalizedData, rate decimal.Decimal) ([]domain.CalculatedLineItem, []domain.Diagnostic) {
	var ledger []domain.CalculatedLineItem
	var diags []domain.Diagnostic

	for _, rule := range data.Rules {
		if data.IsDegraded(rule.Category) {
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagDegradedCategory,
				Message:  fmt.Sprintf("rule %s skipped: %s data was degraded", rule.ID, rule.Category),
				Category: rule.Category,
			})
			continue
		}

		ds, ok := datasetFor(data, rule)
		if !ok {
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagEmptyDataset,
				Message:  fmt.Sprintf("rule %s skipped: no %s data in this run", rule.ID, rule.Category),
				Category: rule.Category,
			})
			continue
		}

		items, err := formula.Evaluate(rule, ds, rate)
		if err != nil {
			diags = append(diags, domain.Diagnostic{
				Kind:     diagKind(err),
				Message:  err.Error(),
				Category: rule.Category,
			})
			continue
		}
		ledger = append(ledger, items...)
	}

	return ledger, diags
}

// datasetFor selects and period-filters the records a rule applies to.
func datasetFor(data *normalizer.NormalizedData, rule domain.FeeRule) (formula.Dataset, bool) {
	if rule.Category == domain.CategoryCard {
		if len(data.CardIssuance) == 0 {
			return formula.Dataset{}, false
		}
		return formula.Dataset{CardIssuance: data.CardIssuance}, true
	}

	records := data.Transactions[rule.Category]
	if len(records) == 0 {
		return formula.Dataset{}, false
	}
	var inPeriod []domain.TransactionRecord
	for _, r := range records {
		if rule.InEffect(r.Date) {
			inPeriod = append(inPeriod, r)
		}
	}
	if len(inPeriod) == 0 {
		return formula.Dataset{}, false
	}
	return formula.Dataset{Transactions: inPeriod}, true
}

func diagKind(err error) string {
	var unrecognized *domain.UnrecognizedFormulaTypeError
	if errors.As(err, &unrecognized) {
		return domain.DiagUnrecognizedFormula
	}
	var conversion *domain.CurrencyConversionError
	if errors.As(err, &conversion) {
		return domain.DiagCurrencyConversion
	}
	return domain.DiagFormulaError
}
