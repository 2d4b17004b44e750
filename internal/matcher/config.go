package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config controls scoring and tie-breaking. The defaults reproduce the
// documented reconciliation behavior; overrides come from run configuration.
type Config struct {
	// MinScore is the floor below which a pair can never be proposed.
	MinScore float64
	// TextWeight and AmountWeight combine the two similarity components.
	// They must sum to 1.
	TextWeight   float64
	AmountWeight float64
	// ExactEpsilon is the absolute amount difference treated as an exact
	// match; TolerancePct is the relative equivalent, in percent of the
	// invoiced amount. Either one satisfied marks the pair exact.
	ExactEpsilon decimal.Decimal
	TolerancePct decimal.Decimal
	// AmbiguityEpsilon flags matches whose top-two candidates score within
	// this distance of each other.
	AmbiguityEpsilon float64
}

// DefaultConfig returns the standard matching configuration.
func DefaultConfig() Config {
	return Config{
		MinScore:         0.3,
		TextWeight:       0.6,
		AmountWeight:     0.4,
		ExactEpsilon:     decimal.NewFromFloat(0.01),
		TolerancePct:     decimal.NewFromFloat(0.1),
		AmbiguityEpsilon: 0.01,
	}
}

// exactAmount reports whether the difference qualifies as an exact amount
// match under the absolute or relative tolerance.
func (c Config) exactAmount(diff, invoiced decimal.Decimal) bool {
	if diff.LessThanOrEqual(c.ExactEpsilon) {
		return true
	}
	if invoiced.IsPositive() {
		return diff.Mul(decimal.NewFromInt(100)).Div(invoiced).LessThanOrEqual(c.TolerancePct)
	}
	return false
}

// Validate checks the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min score %v out of [0,1]", c.MinScore)
	}
	if c.TextWeight < 0 || c.AmountWeight < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if sum := c.TextWeight + c.AmountWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	if c.ExactEpsilon.IsNegative() {
		return fmt.Errorf("exact epsilon must be non-negative")
	}
	if c.TolerancePct.IsNegative() {
		return fmt.Errorf("tolerance pct must be non-negative")
	}
	return nil
}
