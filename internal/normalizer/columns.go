package normalizer

import (
	"strings"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// Canonical field names used across the category contracts.
const (
	fieldAmount        = "amount"
	fieldCurrency      = "currency"
	fieldDate          = "date"
	fieldReference     = "reference"
	fieldSubType       = "sub_type"
	fieldDescription   = "description"
	fieldCount         = "count"
	fieldRuleID        = "rule_id"
	fieldFeeType       = "fee_type"
	fieldKind          = "kind"
	fieldRate          = "rate"
	fieldTiers         = "tiers"
	fieldMin           = "min"
	fieldMax           = "max"
	fieldCategory      = "category"
	fieldEffectiveFrom = "effective_from"
	fieldEffectiveTo   = "effective_to"
)

// fieldAliases maps each canonical field to the header variants seen in the
// source workbooks. Headers are compared after normalizeHeader.
var fieldAliases = map[string][]string{
	fieldAmount:        {"amount", "amt", "transaction amount", "txn amount", "amount usd", "amount inr", "value"},
	fieldCurrency:      {"currency", "ccy", "curr"},
	fieldDate:          {"date", "transaction date", "txn date", "posting date", "issue date", "issuance date"},
	fieldReference:     {"reference", "reference id", "ref", "trx id", "transaction id"},
	fieldSubType:       {"sub type", "transaction type", "card type"},
	fieldDescription:   {"description", "fee description", "narrative", "line description"},
	fieldCount:         {"count", "cards issued", "card count", "quantity"},
	fieldRuleID:        {"rule id", "fee id", "fee code"},
	fieldFeeType:       {"fee type", "fee name"},
	fieldKind:          {"calculation method", "formula", "formula type", "method"},
	fieldRate:          {"rate", "fee rate", "unit rate"},
	fieldTiers:         {"tiers", "tier structure", "rate chart"},
	fieldMin:           {"minimum", "min amount"},
	fieldMax:           {"maximum", "max amount"},
	fieldCategory:      {"category", "applies to", "applicable category"},
	fieldEffectiveFrom: {"effective from", "valid from"},
	fieldEffectiveTo:   {"effective to", "valid to"},
}

// normalizeHeader reduces a header cell to its comparable form: lowercase,
// underscores and punctuation to spaces, whitespace collapsed.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// columnMap resolves canonical fields to column indices for one table.
// Two distinct headers claiming the same field make the mapping ambiguous.
func columnMap(t domain.Table, fields []string) (map[string]int, error) {
	normalized := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		normalized[i] = normalizeHeader(h)
	}

	out := make(map[string]int, len(fields))
	for _, field := range fields {
		var hits []int
		for i, h := range normalized {
			for _, alias := range fieldAliases[field] {
				if h == alias {
					hits = append(hits, i)
					break
				}
			}
		}
		switch {
		case len(hits) > 1:
			headers := make([]string, 0, len(hits))
			for _, i := range hits {
				headers = append(headers, t.Headers[i])
			}
			return nil, &domain.AmbiguousColumnMappingError{
				Category: t.Category,
				Field:    field,
				Headers:  headers,
			}
		case len(hits) == 1:
			out[field] = hits[0]
		}
	}
	return out, nil
}

// cell returns the row value at the mapped index, or "" when the field was
// not mapped or the row is short.
func cell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
