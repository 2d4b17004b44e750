package matcher

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// closenessFloor keeps the amount-closeness denominator away from zero.
var closenessFloor = decimal.NewFromFloat(0.01)

// normalizeText lowercases, strips punctuation, and collapses whitespace so
// "Intl. License-Fee" and "intl license fee" compare equal.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// textSimilarity is a normalized Levenshtein similarity over the normalized
// strings: symmetric, deterministic, bounded in [0,1].
func textSimilarity(a, b string) float64 {
	a, b = normalizeText(a), normalizeText(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	dist := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1 - float64(dist)/float64(maxLen)
}

// amountCloseness is 1 − min(1, |calc−inv| / max(inv, ε)).
func amountCloseness(calc, inv decimal.Decimal) float64 {
	denom := inv.Abs()
	if denom.LessThan(closenessFloor) {
		denom = closenessFloor
	}
	ratio, _ := calc.Sub(inv).Abs().Div(denom).Float64()
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}
