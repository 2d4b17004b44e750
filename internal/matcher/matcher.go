// Package matcher pairs calculated fee lines with invoiced lines, one to one.
// The pairing is fully deterministic: scores, processing order, and every
// tie-break are total orders, so identical inputs always produce identical
// results.
package matcher

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

const scoreEqualityEpsilon = 1e-12

type candidate struct {
	calcIdx    int
	score      float64
	amountDiff decimal.Decimal
}

// Match pairs the two sides. Items with no acceptable counterpart are
// reported as unmatched, never dropped.
func Match(calculated []domain.CalculatedLineItem, invoiced []domain.InvoiceLineItem, cfg Config) ([]domain.MatchResult, []domain.Diagnostic) {
	var diags []domain.Diagnostic

	// Invoice processing order: descending amount, row order on ties.
	order := make([]int, len(invoiced))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := invoiced[order[a]], invoiced[order[b]]
		if !ia.Amount.Equal(ib.Amount) {
			return ia.Amount.GreaterThan(ib.Amount)
		}
		return ia.Row < ib.Row
	})

	claimed := make([]bool, len(calculated))
	results := make([]domain.MatchResult, 0, len(calculated)+len(invoiced))

	for _, invIdx := range order {
		inv := invoiced[invIdx]

		var candidates []candidate
		for calcIdx, calc := range calculated {
			if claimed[calcIdx] {
				continue
			}
			score := cfg.TextWeight*textSimilarity(calc.FeeType, inv.Description) +
				cfg.AmountWeight*amountCloseness(calc.Amount, inv.Amount)
			if score < cfg.MinScore {
				continue
			}
			candidates = append(candidates, candidate{
				calcIdx:    calcIdx,
				score:      score,
				amountDiff: calc.Amount.Sub(inv.Amount).Abs(),
			})
		}

		if len(candidates) == 0 {
			line := inv
			results = append(results, domain.MatchResult{
				Invoice: &line,
				Status:  domain.StatusUnmatchedInvoice,
			})
			continue
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			ca, cb := candidates[a], candidates[b]
			if math.Abs(ca.score-cb.score) > scoreEqualityEpsilon {
				return ca.score > cb.score
			}
			if !ca.amountDiff.Equal(cb.amountDiff) {
				return ca.amountDiff.LessThan(cb.amountDiff)
			}
			return calculated[ca.calcIdx].RuleID < calculated[cb.calcIdx].RuleID
		})

		best := candidates[0]
		if len(candidates) > 1 && candidates[1].score > best.score-cfg.AmbiguityEpsilon {
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagMatchingAmbiguity,
				Message:  fmt.Sprintf("invoice row %d: rules %s and %s score within %.2g of each other", inv.Row, calculated[best.calcIdx].RuleID, calculated[candidates[1].calcIdx].RuleID, cfg.AmbiguityEpsilon),
				Category: domain.CategoryInvoice,
			})
		}

		claimed[best.calcIdx] = true
		calc := calculated[best.calcIdx]
		line := inv
		results = append(results, domain.MatchResult{
			Calculated:  &calc,
			Invoice:     &line,
			Score:       best.score,
			Status:      domain.StatusMatched,
			AmountDiff:  best.amountDiff,
			ExactAmount: cfg.exactAmount(best.amountDiff, inv.Amount),
		})
	}

	for calcIdx, calc := range calculated {
		if claimed[calcIdx] {
			continue
		}
		item := calc
		results = append(results, domain.MatchResult{
			Calculated: &item,
			Status:     domain.StatusUnmatchedCalculated,
		})
	}

	return results, diags
}
