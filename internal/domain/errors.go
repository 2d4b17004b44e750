package domain

import (
	"fmt"
	"strings"
)

// MissingRequiredFileError reports a required category that was never
// supplied by the caller.
type MissingRequiredFileError struct {
	Category Category
}

func (e *MissingRequiredFileError) Error() string {
	return fmt.Sprintf("required %s file is missing", e.Category)
}

// AmbiguousColumnMappingError reports two distinct headers resolving to the
// same canonical field. The category degrades rather than guessing.
type AmbiguousColumnMappingError struct {
	Category Category
	Field    string
	Headers  []string
}

func (e *AmbiguousColumnMappingError) Error() string {
	return fmt.Sprintf("ambiguous column mapping for %q in %s data: headers %s",
		e.Field, e.Category, strings.Join(e.Headers, ", "))
}

// CurrencyConversionError reports a missing or invalid exchange rate for a
// category that needs conversion.
type CurrencyConversionError struct {
	Category Category
	Reason   string
}

func (e *CurrencyConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s amounts: %s", e.Category, e.Reason)
}

// UnrecognizedFormulaTypeError reports a rule declaring a formula kind
// outside the recognized set.
type UnrecognizedFormulaTypeError struct {
	RuleID string
	Kind   string
}

func (e *UnrecognizedFormulaTypeError) Error() string {
	return fmt.Sprintf("rule %s declares unrecognized formula type %q", e.RuleID, e.Kind)
}
