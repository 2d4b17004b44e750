// Package config loads the engine's runtime configuration from the
// environment, with an optional .env file for local runs. The configuration
// is read once and treated as immutable for the lifetime of a run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// RoundingHalfUp2DP is the only recognized rounding mode: round half up,
// two decimal places, applied once per formula result.
const RoundingHalfUp2DP = "half-up-2dp"

// Config holds the recognized engine options.
type Config struct {
	ExchangeRate      decimal.Decimal
	ExchangeAsOf      time.Time
	MatchTolerancePct decimal.Decimal
	MinMatchScore     float64
	TextWeight        float64
	AmountWeight      float64
	RoundingMode      string
}

// Default returns the engine defaults: no exchange rate (must be supplied),
// 0.1% match tolerance, 0.3 minimum match score, 0.6/0.4 text/amount weights.
func Default() Config {
	return Config{
		MatchTolerancePct: decimal.NewFromFloat(0.1),
		MinMatchScore:     0.3,
		TextWeight:        0.6,
		AmountWeight:      0.4,
		RoundingMode:      RoundingHalfUp2DP,
	}
}

// Load reads configuration from the environment on top of the defaults.
// A .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("CARDRECO_EXCHANGE_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARDRECO_EXCHANGE_RATE %q: %w", v, err)
		}
		cfg.ExchangeRate = rate
	}
	if v := os.Getenv("CARDRECO_EXCHANGE_AS_OF"); v != "" {
		asOf, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARDRECO_EXCHANGE_AS_OF %q: %w", v, err)
		}
		cfg.ExchangeAsOf = asOf
	}
	if v := os.Getenv("CARDRECO_MATCH_TOLERANCE_PCT"); v != "" {
		tol, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARDRECO_MATCH_TOLERANCE_PCT %q: %w", v, err)
		}
		cfg.MatchTolerancePct = tol
	}
	if v := os.Getenv("CARDRECO_MIN_MATCH_SCORE"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARDRECO_MIN_MATCH_SCORE %q: %w", v, err)
		}
		cfg.MinMatchScore = score
	}
	if v := os.Getenv("CARDRECO_ROUNDING_MODE"); v != "" {
		cfg.RoundingMode = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects option combinations the engine cannot honor.
func (c Config) Validate() error {
	if c.ExchangeRate.IsNegative() {
		return fmt.Errorf("exchange rate must not be negative")
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 1 {
		return fmt.Errorf("min match score %v out of [0,1]", c.MinMatchScore)
	}
	if c.MatchTolerancePct.IsNegative() {
		return fmt.Errorf("match tolerance pct must not be negative")
	}
	if c.RoundingMode != RoundingHalfUp2DP {
		return fmt.Errorf("unsupported rounding mode %q", c.RoundingMode)
	}
	return nil
}
