// Package normalizer converts parsed category tables into the canonical
// entities the calculation pipeline consumes. Structural problems degrade
// the affected category instead of aborting the run.
package normalizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// NormalizedData is the canonical view of one run's inputs.
type NormalizedData struct {
	Rules        []domain.FeeRule
	Transactions map[domain.Category][]domain.TransactionRecord
	CardIssuance []domain.CardIssuanceRecord
	Invoice      []domain.InvoiceLineItem
	Degraded     map[domain.Category]bool
}

// IsDegraded reports whether the category was excluded from the run.
func (d *NormalizedData) IsDegraded(c domain.Category) bool {
	return d.Degraded[c]
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-Jan-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Normalize converts the supplied tables using the exchange snapshot.
// Every structural issue becomes a diagnostic; only the affected category is
// dropped.
func Normalize(tables []domain.Table, snapshot domain.ExchangeSnapshot) (*NormalizedData, []domain.Diagnostic) {
	data := &NormalizedData{
		Transactions: make(map[domain.Category][]domain.TransactionRecord),
		Degraded:     make(map[domain.Category]bool),
	}
	var diags []domain.Diagnostic

	degrade := func(c domain.Category, kind, msg string) {
		data.Degraded[c] = true
		diags = append(diags, domain.Diagnostic{Kind: kind, Message: msg, Category: c})
	}

	for _, t := range tables {
		if len(t.Rows) == 0 {
			degrade(t.Category, domain.DiagEmptyDataset, fmt.Sprintf("%s table %q has no data rows", t.Category, t.Source))
			continue
		}

		switch t.Category {
		case domain.CategorySummary:
			rules, ruleDiags, err := parseRules(t)
			if err != nil {
				degrade(t.Category, mappingKind(err), err.Error())
				continue
			}
			diags = append(diags, ruleDiags...)
			data.Rules = append(data.Rules, rules...)
		case domain.CategoryCard:
			records, err := parseCardIssuance(t)
			if err != nil {
				degrade(t.Category, mappingKind(err), err.Error())
				continue
			}
			data.CardIssuance = append(data.CardIssuance, records...)
		case domain.CategoryInvoice:
			lines, err := parseInvoice(t, snapshot)
			if err != nil {
				degrade(t.Category, mappingKind(err), err.Error())
				continue
			}
			data.Invoice = append(data.Invoice, lines...)
		case domain.CategoryInternational, domain.CategoryDomestic, domain.CategoryDispute:
			records, skipped, err := parseTransactions(t, snapshot)
			if err != nil {
				degrade(t.Category, mappingKind(err), err.Error())
				continue
			}
			if skipped > 0 {
				diags = append(diags, domain.Diagnostic{
					Kind:     domain.DiagColumnMapping,
					Message:  fmt.Sprintf("skipped %d unparseable %s rows", skipped, t.Category),
					Category: t.Category,
				})
			}
			data.Transactions[t.Category] = append(data.Transactions[t.Category], records...)
		default:
			diags = append(diags, domain.Diagnostic{
				Kind:    domain.DiagColumnMapping,
				Message: fmt.Sprintf("table %q has unknown category %q", t.Source, t.Category),
			})
		}
	}

	return data, diags
}

func mappingKind(err error) string {
	if _, ok := err.(*domain.AmbiguousColumnMappingError); ok {
		return domain.DiagAmbiguousMapping
	}
	if _, ok := err.(*domain.CurrencyConversionError); ok {
		return domain.DiagCurrencyConversion
	}
	return domain.DiagColumnMapping
}

// parseTransactions decodes transaction rows and converts every amount to the
// normalized currency. A non-INR amount without a usable exchange rate
// degrades the whole category.
func parseTransactions(t domain.Table, snapshot domain.ExchangeSnapshot) ([]domain.TransactionRecord, int, error) {
	cols, err := columnMap(t, []string{fieldAmount, fieldCurrency, fieldDate, fieldReference, fieldSubType})
	if err != nil {
		return nil, 0, err
	}
	for _, required := range []string{fieldAmount, fieldDate} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("%s table %q has no recognizable %s column", t.Category, t.Source, required)
		}
	}

	var records []domain.TransactionRecord
	skipped := 0
	for _, row := range t.Rows {
		amount, err := parseAmount(cell(row, cols, fieldAmount))
		if err != nil {
			skipped++
			continue
		}
		date, err := parseDate(cell(row, cols, fieldDate))
		if err != nil {
			skipped++
			continue
		}
		currency := strings.ToUpper(cell(row, cols, fieldCurrency))
		if currency == "" {
			currency = defaultCurrency(t.Category)
		}
		if currency != domain.NormalizedCurrency {
			if !snapshot.Rate.IsPositive() {
				return nil, 0, &domain.CurrencyConversionError{
					Category: t.Category,
					Reason:   fmt.Sprintf("no valid exchange rate for %s amounts in %s", currency, t.Source),
				}
			}
			amount = amount.Mul(snapshot.Rate)
			currency = domain.NormalizedCurrency
		}
		records = append(records, domain.TransactionRecord{
			Category:  t.Category,
			Amount:    amount,
			Currency:  currency,
			Date:      date,
			Reference: cell(row, cols, fieldReference),
			SubType:   cell(row, cols, fieldSubType),
		})
	}
	return records, skipped, nil
}

// defaultCurrency covers source tables that omit a currency column. The
// scheme reports cross-border activity in USD and domestic activity in INR.
func defaultCurrency(c domain.Category) string {
	if c == domain.CategoryDomestic {
		return domain.NormalizedCurrency
	}
	return "USD"
}

func parseInvoice(t domain.Table, snapshot domain.ExchangeSnapshot) ([]domain.InvoiceLineItem, error) {
	cols, err := columnMap(t, []string{fieldDescription, fieldAmount, fieldCurrency})
	if err != nil {
		return nil, err
	}
	for _, required := range []string{fieldDescription, fieldAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("invoice table %q has no recognizable %s column", t.Source, required)
		}
	}

	var lines []domain.InvoiceLineItem
	for i, row := range t.Rows {
		amount, err := parseAmount(cell(row, cols, fieldAmount))
		if err != nil {
			continue
		}
		currency := strings.ToUpper(cell(row, cols, fieldCurrency))
		if currency == "" {
			currency = domain.NormalizedCurrency
		}
		if currency != domain.NormalizedCurrency {
			if !snapshot.Rate.IsPositive() {
				return nil, &domain.CurrencyConversionError{
					Category: t.Category,
					Reason:   fmt.Sprintf("no valid exchange rate for %s line in %s", currency, t.Source),
				}
			}
			amount = amount.Mul(snapshot.Rate)
			currency = domain.NormalizedCurrency
		}
		lines = append(lines, domain.InvoiceLineItem{
			Description: cell(row, cols, fieldDescription),
			Amount:      amount.Round(2),
			Currency:    currency,
			Row:         i + 1,
		})
	}
	return lines, nil
}

// parseCardIssuance folds issuance rows into per-month records. Reporting
// periods come from the dates actually present, not an assumed range.
func parseCardIssuance(t domain.Table) ([]domain.CardIssuanceRecord, error) {
	cols, err := columnMap(t, []string{fieldDate, fieldCount, fieldSubType})
	if err != nil {
		return nil, err
	}
	for _, required := range []string{fieldDate, fieldCount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("card issuance table %q has no recognizable %s column", t.Source, required)
		}
	}

	byPeriod := make(map[string]*domain.CardIssuanceRecord)
	for _, row := range t.Rows {
		date, err := parseDate(cell(row, cols, fieldDate))
		if err != nil {
			continue
		}
		count, err := parseAmount(cell(row, cols, fieldCount))
		if err != nil {
			continue
		}
		period := date.Format("2006-01")
		rec, ok := byPeriod[period]
		if !ok {
			rec = &domain.CardIssuanceRecord{Period: period, Breakdown: make(map[string]int)}
			byPeriod[period] = rec
		}
		n := int(count.IntPart())
		rec.Count += n
		if sub := cell(row, cols, fieldSubType); sub != "" {
			rec.Breakdown[sub] += n
		}
	}

	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	records := make([]domain.CardIssuanceRecord, 0, len(periods))
	for _, p := range periods {
		records = append(records, *byPeriod[p])
	}
	return records, nil
}

func parseRules(t domain.Table) ([]domain.FeeRule, []domain.Diagnostic, error) {
	cols, err := columnMap(t, []string{
		fieldRuleID, fieldFeeType, fieldKind, fieldRate, fieldTiers, fieldMin, fieldMax,
		fieldCurrency, fieldCategory, fieldSubType, fieldEffectiveFrom, fieldEffectiveTo,
	})
	if err != nil {
		return nil, nil, err
	}
	for _, required := range []string{fieldRuleID, fieldKind, fieldCategory} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("rule table %q has no recognizable %s column", t.Source, required)
		}
	}

	var rules []domain.FeeRule
	var diags []domain.Diagnostic
	for _, row := range t.Rows {
		ruleID := cell(row, cols, fieldRuleID)
		if ruleID == "" {
			continue
		}
		kind, err := domain.ParseFormulaKind(ruleID, normalizeHeader(cell(row, cols, fieldKind)))
		if err != nil {
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagUnrecognizedFormula,
				Message:  err.Error(),
				Category: domain.CategorySummary,
			})
			continue
		}
		category, ok := domain.ParseCategory(strings.ToLower(cell(row, cols, fieldCategory)))
		if !ok {
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagColumnMapping,
				Message:  fmt.Sprintf("rule %s applies to unknown category %q", ruleID, cell(row, cols, fieldCategory)),
				Category: domain.CategorySummary,
			})
			continue
		}

		rule := domain.FeeRule{
			ID:          ruleID,
			Description: cell(row, cols, fieldFeeType),
			Kind:        kind,
			Category:    category,
			SubType:     cell(row, cols, fieldSubType),
			Currency:    strings.ToUpper(cell(row, cols, fieldCurrency)),
		}
		if rule.Description == "" {
			rule.Description = ruleID
		}
		if rule.Currency == "" {
			rule.Currency = "USD"
		}
		if v := cell(row, cols, fieldRate); v != "" {
			rate, err := parseAmount(v)
			if err != nil {
				diags = append(diags, domain.Diagnostic{
					Kind:     domain.DiagColumnMapping,
					Message:  fmt.Sprintf("rule %s has unparseable rate %q", ruleID, v),
					Category: domain.CategorySummary,
				})
				continue
			}
			rule.Rate = rate
		}
		if v := cell(row, cols, fieldTiers); v != "" {
			tiers, err := parseTiers(v)
			if err != nil {
				diags = append(diags, domain.Diagnostic{
					Kind:     domain.DiagColumnMapping,
					Message:  fmt.Sprintf("rule %s has unparseable tiers %q: %v", ruleID, v, err),
					Category: domain.CategorySummary,
				})
				continue
			}
			rule.Tiers = tiers
		}
		if v := cell(row, cols, fieldMin); v != "" {
			if min, err := parseAmount(v); err == nil {
				rule.MinAmount = min
			}
		}
		if v := cell(row, cols, fieldMax); v != "" {
			if max, err := parseAmount(v); err == nil {
				rule.MaxAmount = max
			}
		}
		if v := cell(row, cols, fieldEffectiveFrom); v != "" {
			if d, err := parseDate(v); err == nil {
				rule.EffectiveFrom = d
			}
		}
		if v := cell(row, cols, fieldEffectiveTo); v != "" {
			if d, err := parseDate(v); err == nil {
				rule.EffectiveTo = d
			}
		}
		rules = append(rules, rule)
	}
	return rules, diags, nil
}

// parseTiers decodes "upTo:rate;upTo:rate" bands. An empty or "inf" upTo
// marks the unbounded final band. Bands must ascend and the final band must
// be unbounded, so no unit count ever falls outside the chart.
func parseTiers(s string) ([]domain.Tier, error) {
	parts := strings.Split(s, ";")
	tiers := make([]domain.Tier, 0, len(parts))
	prev := decimal.Zero
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bits := strings.SplitN(part, ":", 2)
		if len(bits) != 2 {
			return nil, fmt.Errorf("band %q is not upTo:rate", part)
		}
		rate, err := parseAmount(bits[1])
		if err != nil {
			return nil, fmt.Errorf("band %q has invalid rate", part)
		}
		upToRaw := strings.ToLower(strings.TrimSpace(bits[0]))
		tier := domain.Tier{Rate: rate}
		if upToRaw != "" && upToRaw != "inf" {
			upTo, err := parseAmount(upToRaw)
			if err != nil {
				return nil, fmt.Errorf("band %q has invalid breakpoint", part)
			}
			if upTo.LessThanOrEqual(prev) {
				return nil, fmt.Errorf("band %q breaks ascending breakpoint order", part)
			}
			prev = upTo
			tier.UpTo = upTo
		}
		tiers = append(tiers, tier)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no bands found")
	}
	if !tiers[len(tiers)-1].Unbounded() {
		return nil, fmt.Errorf("final band must be unbounded")
	}
	return tiers, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "$", "", "₹", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
