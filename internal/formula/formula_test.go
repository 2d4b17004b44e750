package formula_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/formula"
)

func makeTransactions(n int, amount float64, subType string) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.TransactionRecord{
			Category: domain.CategoryInternational,
			Amount:   decimal.NewFromFloat(amount),
			Currency: domain.NormalizedCurrency,
			Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%28),
			SubType:  subType,
		})
	}
	return records
}

func TestEvaluate(t *testing.T) {
	rate := decimal.NewFromInt(83)

	tests := []struct {
		name       string
		rule       domain.FeeRule
		dataset    formula.Dataset
		rate       decimal.Decimal
		wantAmount string
		wantCount  int
		wantErr    bool
	}{
		{
			name: "tiered rule clips partial tiers and normalizes currency",
			rule: domain.FeeRule{
				ID:       "R1",
				Kind:     domain.FormulaTiered,
				Currency: "USD",
				Category: domain.CategoryInternational,
				Tiers: []domain.Tier{
					{UpTo: decimal.NewFromInt(1000), Rate: decimal.NewFromFloat(0.002)},
					{Rate: decimal.NewFromFloat(0.0015)},
				},
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(1500, 120, "")},
			rate:       rate,
			wantAmount: "228.25",
			wantCount:  1500,
		},
		{
			name: "tiered rule stops inside the first band",
			rule: domain.FeeRule{
				ID:       "R1",
				Kind:     domain.FormulaTiered,
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryInternational,
				Tiers: []domain.Tier{
					{UpTo: decimal.NewFromInt(1000), Rate: decimal.NewFromFloat(0.5)},
					{Rate: decimal.NewFromFloat(0.25)},
				},
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(400, 10, "")},
			rate:       rate,
			wantAmount: "200.00",
			wantCount:  400,
		},
		{
			name: "per-transaction rule multiplies count by flat rate",
			rule: domain.FeeRule{
				ID:       "R2",
				Kind:     domain.FormulaPerTransaction,
				Rate:     decimal.NewFromFloat(1.5),
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryDomestic,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(10, 500, "")},
			rate:       rate,
			wantAmount: "15.00",
			wantCount:  10,
		},
		{
			name: "volume-based rule filters by sub-type",
			rule: domain.FeeRule{
				ID:       "R3",
				Kind:     domain.FormulaVolumeBased,
				Rate:     decimal.NewFromInt(2),
				SubType:  "chargeback",
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryDispute,
			},
			dataset: formula.Dataset{Transactions: append(
				makeTransactions(3, 100, "chargeback"),
				makeTransactions(7, 100, "retrieval")...,
			)},
			rate:       rate,
			wantAmount: "6.00",
			wantCount:  3,
		},
		{
			name: "amount-based rule takes a percentage of transacted value",
			rule: domain.FeeRule{
				ID:       "R4",
				Kind:     domain.FormulaAmountBased,
				Rate:     decimal.NewFromFloat(0.01),
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryDomestic,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(4, 250, "")},
			rate:       rate,
			wantAmount: "10.00",
			wantCount:  4,
		},
		{
			// One record of 8300 INR (100 USD normalized at 83): the fee is
			// one percent of the normalized value, not of the source value.
			name: "amount-based rule prices the normalized value",
			rule: domain.FeeRule{
				ID:       "R4",
				Kind:     domain.FormulaAmountBased,
				Rate:     decimal.NewFromFloat(0.01),
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryInternational,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(1, 8300, "")},
			rate:       rate,
			wantAmount: "83.00",
			wantCount:  1,
		},
		{
			// The rule's price-list currency does not rescale an amount-based
			// fee; the summed amounts are already normalized.
			name: "amount-based rule ignores the rule currency",
			rule: domain.FeeRule{
				ID:       "R4",
				Kind:     domain.FormulaAmountBased,
				Rate:     decimal.NewFromFloat(0.01),
				Currency: "USD",
				Category: domain.CategoryInternational,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(1, 8300, "")},
			rate:       rate,
			wantAmount: "83.00",
			wantCount:  1,
		},
		{
			name: "minimum clamp lifts a small fee",
			rule: domain.FeeRule{
				ID:        "R5",
				Kind:      domain.FormulaPerTransaction,
				Rate:      decimal.NewFromFloat(0.1),
				MinAmount: decimal.NewFromInt(50),
				Currency:  domain.NormalizedCurrency,
				Category:  domain.CategoryDomestic,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(2, 10, "")},
			rate:       rate,
			wantAmount: "50.00",
			wantCount:  2,
		},
		{
			name: "maximum clamp caps a large fee",
			rule: domain.FeeRule{
				ID:        "R6",
				Kind:      domain.FormulaPerTransaction,
				Rate:      decimal.NewFromInt(10),
				MaxAmount: decimal.NewFromInt(25),
				Currency:  domain.NormalizedCurrency,
				Category:  domain.CategoryDomestic,
			},
			dataset:    formula.Dataset{Transactions: makeTransactions(100, 10, "")},
			rate:       rate,
			wantAmount: "25.00",
			wantCount:  100,
		},
		{
			name: "card issuance counts drive the unit count",
			rule: domain.FeeRule{
				ID:       "R7",
				Kind:     domain.FormulaPerTransaction,
				Rate:     decimal.NewFromInt(3),
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryCard,
			},
			dataset: formula.Dataset{CardIssuance: []domain.CardIssuanceRecord{
				{Period: "2025-01", Count: 40},
				{Period: "2025-02", Count: 60},
			}},
			rate:       rate,
			wantAmount: "300.00",
			wantCount:  100,
		},
		{
			name: "foreign-currency rule without a usable rate fails",
			rule: domain.FeeRule{
				ID:       "R8",
				Kind:     domain.FormulaPerTransaction,
				Rate:     decimal.NewFromInt(1),
				Currency: "USD",
				Category: domain.CategoryInternational,
			},
			dataset: formula.Dataset{Transactions: makeTransactions(5, 100, "")},
			rate:    decimal.Zero,
			wantErr: true,
		},
		{
			name: "tiered rule without tiers fails",
			rule: domain.FeeRule{
				ID:       "R9",
				Kind:     domain.FormulaTiered,
				Currency: domain.NormalizedCurrency,
				Category: domain.CategoryDomestic,
			},
			dataset: formula.Dataset{Transactions: makeTransactions(5, 100, "")},
			rate:    rate,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := formula.Evaluate(tt.rule, tt.dataset, tt.rate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, items, 1)
			assert.Equal(t, tt.wantAmount, items[0].Amount.StringFixed(2))
			assert.Equal(t, tt.wantCount, items[0].RecordCount)
			assert.Equal(t, tt.rule.ID, items[0].RuleID)
			assert.Equal(t, tt.rule.Category, items[0].Category)
		})
	}
}

func TestEvaluateUnknownKindIsAnError(t *testing.T) {
	rule := domain.FeeRule{
		ID:       "R10",
		Kind:     domain.FormulaKind(99),
		Currency: domain.NormalizedCurrency,
		Category: domain.CategoryDomestic,
	}

	items, err := formula.Evaluate(rule, formula.Dataset{Transactions: makeTransactions(1, 1, "")}, decimal.NewFromInt(83))

	assert.Nil(t, items)
	var typed *domain.UnrecognizedFormulaTypeError
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, "R10", typed.RuleID)
}

func TestEvaluateCardPeriodSpansDetectedRange(t *testing.T) {
	rule := domain.FeeRule{
		ID:       "CARD-1",
		Kind:     domain.FormulaPerTransaction,
		Rate:     decimal.NewFromInt(1),
		Currency: domain.NormalizedCurrency,
		Category: domain.CategoryCard,
	}
	ds := formula.Dataset{CardIssuance: []domain.CardIssuanceRecord{
		{Period: "2025-01", Count: 5},
		{Period: "2025-03", Count: 5},
	}}

	items, err := formula.Evaluate(rule, ds, decimal.NewFromInt(83))

	assert.NoError(t, err)
	assert.Equal(t, "2025-01..2025-03", items[0].Period)
}
