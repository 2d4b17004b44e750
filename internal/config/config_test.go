package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.True(t, cfg.ExchangeRate.IsZero())
	assert.Equal(t, "0.1", cfg.MatchTolerancePct.String())
	assert.Equal(t, 0.3, cfg.MinMatchScore)
	assert.Equal(t, 0.6, cfg.TextWeight)
	assert.Equal(t, 0.4, cfg.AmountWeight)
	assert.Equal(t, config.RoundingHalfUp2DP, cfg.RoundingMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CARDRECO_EXCHANGE_RATE", "83.25")
	t.Setenv("CARDRECO_EXCHANGE_AS_OF", "2025-01-31")
	t.Setenv("CARDRECO_MATCH_TOLERANCE_PCT", "0.5")
	t.Setenv("CARDRECO_MIN_MATCH_SCORE", "0.4")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "83.25", cfg.ExchangeRate.String())
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), cfg.ExchangeAsOf)
	assert.Equal(t, "0.5", cfg.MatchTolerancePct.String())
	assert.Equal(t, 0.4, cfg.MinMatchScore)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unparseable rate", key: "CARDRECO_EXCHANGE_RATE", value: "eighty-three"},
		{name: "unparseable date", key: "CARDRECO_EXCHANGE_AS_OF", value: "31/01/2025"},
		{name: "unparseable tolerance", key: "CARDRECO_MATCH_TOLERANCE_PCT", value: "lots"},
		{name: "score out of range", key: "CARDRECO_MIN_MATCH_SCORE", value: "1.5"},
		{name: "unknown rounding mode", key: "CARDRECO_ROUNDING_MODE", value: "banker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
