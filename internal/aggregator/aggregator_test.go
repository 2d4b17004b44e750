package aggregator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/aggregator"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

func matched(ruleID string, calc, inv float64, exact bool) domain.MatchResult {
	c := domain.CalculatedLineItem{
		FeeType:  "Fee " + ruleID,
		Amount:   decimal.NewFromFloat(calc),
		RuleID:   ruleID,
		Category: domain.CategoryInternational,
	}
	i := domain.InvoiceLineItem{
		Description: "Fee " + ruleID,
		Amount:      decimal.NewFromFloat(inv),
		Currency:    domain.NormalizedCurrency,
	}
	return domain.MatchResult{
		Calculated:  &c,
		Invoice:     &i,
		Score:       1,
		Status:      domain.StatusMatched,
		AmountDiff:  c.Amount.Sub(i.Amount).Abs(),
		ExactAmount: exact,
	}
}

func unmatchedCalculated(ruleID string, amount float64) domain.MatchResult {
	c := domain.CalculatedLineItem{
		FeeType:  "Fee " + ruleID,
		Amount:   decimal.NewFromFloat(amount),
		RuleID:   ruleID,
		Category: domain.CategoryDomestic,
	}
	return domain.MatchResult{Calculated: &c, Status: domain.StatusUnmatchedCalculated}
}

func unmatchedInvoice(description string, amount float64) domain.MatchResult {
	i := domain.InvoiceLineItem{
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Currency:    domain.NormalizedCurrency,
	}
	return domain.MatchResult{Invoice: &i, Status: domain.StatusUnmatchedInvoice}
}

func TestAggregateSummaryMetrics(t *testing.T) {
	results := []domain.MatchResult{
		matched("R1", 600000, 650000, false),
		matched("R2", 400000, 400000, true),
		unmatchedCalculated("R3", 0),
	}

	report := aggregator.Aggregate(results, nil, aggregator.RunInfo{RunID: "run-1"})

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, domain.RunComplete, report.State)
	assert.False(t, report.Degraded)

	summary := report.Summary
	// 1,000,000 calculated against 1,050,000 invoiced.
	assert.Equal(t, "95.24%", summary.AmountReconciledPct.Display())
	assert.Equal(t, "100.00%", summary.FeeReconciledPct.Display())
	assert.Equal(t, "50.00%", summary.MatchPct.Display())
	assert.Equal(t, "1000000.00", summary.CalculatedTotal.StringFixed(2))
	assert.Equal(t, "1050000.00", summary.InvoiceTotal.StringFixed(2))
	assert.Equal(t, 2, summary.MatchedItems)
	assert.Equal(t, 2, summary.TotalInvoiceItems)
	assert.Equal(t, 3, summary.TotalCalculatedItems)
	assert.Equal(t, 1, summary.ExactMatchItems)
	assert.Equal(t, 2, summary.TotalFeeMappings)
}

func TestAggregateUndefinedPercentages(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.MatchResult
		check   func(t *testing.T, s domain.ReportSummary)
	}{
		{
			name:    "no data at all leaves every ratio undefined",
			results: nil,
			check: func(t *testing.T, s domain.ReportSummary) {
				assert.Equal(t, "undefined", s.AmountReconciledPct.Display())
				assert.Equal(t, "undefined", s.FeeReconciledPct.Display())
				assert.Equal(t, "undefined", s.MatchPct.Display())
			},
		},
		{
			name:    "zero invoice total is undefined even with calculated fees",
			results: []domain.MatchResult{unmatchedCalculated("R1", 500)},
			check: func(t *testing.T, s domain.ReportSummary) {
				assert.Equal(t, "undefined", s.AmountReconciledPct.Display())
				assert.Equal(t, "undefined", s.FeeReconciledPct.Display())
				assert.Equal(t, "500.00", s.CalculatedTotal.StringFixed(2))
			},
		},
		{
			name:    "no matches leaves the exact-match ratio undefined",
			results: []domain.MatchResult{unmatchedInvoice("Orphan Fee", 100)},
			check: func(t *testing.T, s domain.ReportSummary) {
				assert.Equal(t, "undefined", s.MatchPct.Display())
				assert.Equal(t, "0.00%", s.FeeReconciledPct.Display())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := aggregator.Aggregate(tt.results, nil, aggregator.RunInfo{RunID: "run-2"})
			tt.check(t, report.Summary)
		})
	}
}

func TestAggregateDoesNotClampOverHundredPercent(t *testing.T) {
	results := []domain.MatchResult{matched("R1", 1500, 1000, false)}

	report := aggregator.Aggregate(results, nil, aggregator.RunInfo{})

	assert.Equal(t, "150.00%", report.Summary.AmountReconciledPct.Display())
}

func TestAggregateFillsPerLinePercentDifference(t *testing.T) {
	results := []domain.MatchResult{
		matched("R1", 228.25, 228.00, false),
		matched("R2", 100, 0, true),
	}

	report := aggregator.Aggregate(results, nil, aggregator.RunInfo{})

	assert.True(t, report.Matches[0].PercentDiff.Defined)
	assert.Equal(t, "0.11%", report.Matches[0].PercentDiff.Display())
	// Division by a zero invoiced amount stays undefined.
	assert.Equal(t, "undefined", report.Matches[1].PercentDiff.Display())

	// The caller's slice is left untouched.
	assert.False(t, results[0].PercentDiff.Defined)
}

func TestAggregateCardAndOverviewSections(t *testing.T) {
	issuance := []domain.CardIssuanceRecord{
		{Period: "2025-01", Count: 40},
		{Period: "2025-02", Count: 60},
	}
	transactions := map[domain.Category][]domain.TransactionRecord{
		domain.CategoryInternational: {
			{Category: domain.CategoryInternational, Amount: decimal.NewFromInt(100)},
			{Category: domain.CategoryInternational, Amount: decimal.NewFromInt(250)},
		},
	}
	results := []domain.MatchResult{matched("R1", 42, 42, true)}

	report := aggregator.Aggregate(results, nil, aggregator.RunInfo{
		RunID:        "run-3",
		Degraded:     true,
		CardIssuance: issuance,
		Transactions: transactions,
	})

	assert.True(t, report.Degraded)
	assert.NotNil(t, report.Card)
	assert.Equal(t, 100, report.Card.TotalCards)
	assert.Len(t, report.Card.Monthly, 2)
	assert.Equal(t, "2025-01", report.Card.Monthly[0].Period)

	assert.Len(t, report.Overview, 1)
	entry := report.Overview[0]
	assert.Equal(t, domain.CategoryInternational, entry.Category)
	assert.Equal(t, "350.00", entry.Amount.StringFixed(2))
	assert.Equal(t, 2, entry.Volume)
	assert.Equal(t, "42.00", entry.CalculatedTotal.StringFixed(2))
}

func TestAggregatePassesDiagnosticsThrough(t *testing.T) {
	diags := []domain.Diagnostic{
		{Kind: domain.DiagEmptyDataset, Message: "no dispute data", Category: domain.CategoryDispute},
	}

	report := aggregator.Aggregate(nil, diags, aggregator.RunInfo{})

	assert.Equal(t, diags, report.Diagnostics)
}
