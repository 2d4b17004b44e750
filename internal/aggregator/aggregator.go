// Package aggregator computes the reconciliation metrics and assembles the
// final report from the matched and unmatched sets. Percentages with a zero
// denominator are reported as undefined, never as zero or NaN, and values
// above 100% are surfaced as-is.
package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// RunInfo carries the run-level context the metrics do not derive from the
// match results themselves.
type RunInfo struct {
	RunID        string
	Degraded     bool
	CardIssuance []domain.CardIssuanceRecord
	Transactions map[domain.Category][]domain.TransactionRecord
}

// Aggregate builds the report. The input results are not mutated; per-line
// percentage differences are filled on the report's own copy.
func Aggregate(results []domain.MatchResult, diags []domain.Diagnostic, info RunInfo) *domain.ReconciliationReport {
	var (
		calculatedTotal  = decimal.Zero
		invoiceTotal     = decimal.Zero
		matchedCount     int
		exactCount       int
		invoiceCount     int
		calculatedCount  int
		categoryCalced   = make(map[domain.Category]decimal.Decimal)
		reportedResults  = make([]domain.MatchResult, 0, len(results))
	)

	for _, res := range results {
		if res.Calculated != nil {
			calculatedTotal = calculatedTotal.Add(res.Calculated.Amount)
			calculatedCount++
			categoryCalced[res.Calculated.Category] = categoryCalced[res.Calculated.Category].Add(res.Calculated.Amount)
		}
		if res.Invoice != nil {
			invoiceTotal = invoiceTotal.Add(res.Invoice.Amount)
			invoiceCount++
		}
		if res.Status == domain.StatusMatched {
			matchedCount++
			if res.ExactAmount {
				exactCount++
			}
			res.PercentDiff = percentDifference(res.Calculated.Amount, res.Invoice.Amount)
		}
		reportedResults = append(reportedResults, res)
	}

	summary := domain.ReportSummary{
		AmountReconciledPct:  ratioPercent(calculatedTotal, invoiceTotal),
		FeeReconciledPct:     countPercent(matchedCount, invoiceCount),
		MatchPct:             countPercent(exactCount, matchedCount),
		CalculatedTotal:      calculatedTotal,
		InvoiceTotal:         invoiceTotal,
		MatchedItems:         matchedCount,
		TotalInvoiceItems:    invoiceCount,
		TotalCalculatedItems: calculatedCount,
		ExactMatchItems:      exactCount,
		TotalFeeMappings:     matchedCount,
	}

	return &domain.ReconciliationReport{
		RunID:       info.RunID,
		State:       domain.RunComplete,
		Degraded:    info.Degraded,
		Summary:     summary,
		Card:        cardSummary(info.CardIssuance),
		Overview:    overview(info.Transactions, categoryCalced),
		Matches:     reportedResults,
		Diagnostics: diags,
	}
}

// percentDifference is 100 × (calc − inv) / inv, undefined when inv is zero.
func percentDifference(calc, inv decimal.Decimal) domain.Percentage {
	if inv.IsZero() {
		return domain.UndefinedPercentage()
	}
	return domain.DefinedPercentage(hundred.Mul(calc.Sub(inv)).Div(inv))
}

func ratioPercent(numerator, denominator decimal.Decimal) domain.Percentage {
	if denominator.IsZero() {
		return domain.UndefinedPercentage()
	}
	return domain.DefinedPercentage(hundred.Mul(numerator).Div(denominator))
}

func countPercent(numerator, denominator int) domain.Percentage {
	if denominator == 0 {
		return domain.UndefinedPercentage()
	}
	return domain.DefinedPercentage(
		hundred.Mul(decimal.NewFromInt(int64(numerator))).Div(decimal.NewFromInt(int64(denominator))))
}

func cardSummary(issuance []domain.CardIssuanceRecord) *domain.CardSummary {
	if len(issuance) == 0 {
		return nil
	}
	summary := &domain.CardSummary{}
	for _, rec := range issuance {
		summary.TotalCards += rec.Count
		summary.Monthly = append(summary.Monthly, domain.PeriodCount{Period: rec.Period, Cards: rec.Count})
	}
	return summary
}

func overview(transactions map[domain.Category][]domain.TransactionRecord, calced map[domain.Category]decimal.Decimal) []domain.CategoryOverview {
	var out []domain.CategoryOverview
	for _, cat := range domain.TransactionCategories {
		records := transactions[cat]
		if len(records) == 0 && calced[cat].IsZero() {
			continue
		}
		amount := decimal.Zero
		for _, r := range records {
			amount = amount.Add(r.Amount)
		}
		out = append(out, domain.CategoryOverview{
			Category:        cat,
			Amount:          amount,
			Volume:          len(records),
			CalculatedTotal: calced[cat],
		})
	}
	if total := calced[domain.CategoryCard]; !total.IsZero() {
		out = append(out, domain.CategoryOverview{
			Category:        domain.CategoryCard,
			CalculatedTotal: total,
		})
	}
	return out
}
