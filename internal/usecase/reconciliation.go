package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/aggregator"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/calculator"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/config"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/matcher"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/normalizer"
)

// requiredCategories must be supplied for a run to be meaningful: the rule
// definitions and the counterparty invoice.
var requiredCategories = []domain.Category{domain.CategorySummary, domain.CategoryInvoice}

// ReconciliationUseCase orchestrates one reconciliation run through the
// pipeline stages. Runs are independent; the usecase holds no mutable state
// beyond its injected repository.
type ReconciliationUseCase struct {
	repo TableRepository
}

// NewReconciliationUseCase creates a new instance of the usecase.
func NewReconciliationUseCase(repo TableRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{repo: repo}
}

// Run executes the full pipeline for the supplied category file paths.
// Category-level problems degrade the run; it fails outright only when no
// usable rules or no invoice data survive normalization.
func (uc *ReconciliationUseCase) Run(ctx context.Context, paths map[domain.Category]string, cfg config.Config) (*domain.ReconciliationReport, error) {
	runID := uuid.NewString()
	var diags []domain.Diagnostic

	for _, required := range requiredCategories {
		if _, ok := paths[required]; !ok {
			err := &domain.MissingRequiredFileError{Category: required}
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagMissingFile,
				Message:  err.Error(),
				Category: required,
			})
		}
	}

	tables, err := uc.repo.GetTables(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("could not get category tables: %w", err)
	}

	snapshot := domain.ExchangeSnapshot{Rate: cfg.ExchangeRate, AsOf: cfg.ExchangeAsOf}
	data, normDiags := normalizer.Normalize(tables, snapshot)
	diags = append(diags, normDiags...)

	// Fatal only when no reconciliation is possible at all.
	if len(data.Rules) == 0 {
		return nil, fmt.Errorf("run %s failed while %s: no usable fee rules", runID, domain.RunNormalizing)
	}
	if len(data.Invoice) == 0 {
		return nil, fmt.Errorf("run %s failed while %s: no invoice data", runID, domain.RunNormalizing)
	}

	ledger, calcDiags := calculator.Calculate(data, cfg.ExchangeRate)
	diags = append(diags, calcDiags...)

	matchCfg := matchConfig(cfg)
	if err := matchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}
	results, matchDiags := matcher.Match(ledger, data.Invoice, matchCfg)
	diags = append(diags, matchDiags...)

	report := aggregator.Aggregate(results, diags, aggregator.RunInfo{
		RunID:        runID,
		Degraded:     isDegraded(data, diags),
		CardIssuance: data.CardIssuance,
		Transactions: data.Transactions,
	})
	return report, nil
}

func matchConfig(cfg config.Config) matcher.Config {
	out := matcher.DefaultConfig()
	out.MinScore = cfg.MinMatchScore
	out.TextWeight = cfg.TextWeight
	out.AmountWeight = cfg.AmountWeight
	out.TolerancePct = cfg.MatchTolerancePct
	return out
}

// isDegraded reports whether the run produced less than its inputs promised:
// a category degraded during normalization, a required file never arrived, or
// a rule was dropped for a failed conversion or degraded dataset.
func isDegraded(data *normalizer.NormalizedData, diags []domain.Diagnostic) bool {
	if len(data.Degraded) > 0 {
		return true
	}
	for _, d := range diags {
		switch d.Kind {
		case domain.DiagMissingFile, domain.DiagCurrencyConversion, domain.DiagDegradedCategory:
			return true
		}
	}
	return false
}
