package folioval

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing config file must not be an error")

	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "transactions.jsonl", cfg.LedgerFile)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL())
	assert.Contains(t, cfg.CryptoSymbols, "BTC")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folioval.yaml")
	content := `
currency: USD
ledger_file: /data/ledger.jsonl
cache_ttl_minutes: 5
risk_free_rate: 0.03
crypto_symbols: [AVAX]
goal:
  target: 100000
  monthly_contribution: 500
  annual_growth: 0.06
projection:
  months: 12
  annual_growth: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "/data/ledger.jsonl", cfg.LedgerFile)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 0.03, cfg.RiskFreeRate)
	// Configured symbols extend the built-in set, they do not replace it.
	assert.Contains(t, cfg.CryptoSymbols, "AVAX")
	assert.Contains(t, cfg.CryptoSymbols, "ETH")

	goal := cfg.GoalInput()
	assert.Equal(t, 100000.0, goal.Target)
	assert.Equal(t, 500.0, goal.MonthlyContribution)
	assert.Equal(t, 0.06, goal.AnnualGrowth)
	assert.Equal(t, 12, cfg.Projection.Months)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folioval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: USD\n"), 0644))

	t.Setenv("FOLIOVAL_CURRENCY", "CHF")
	t.Setenv("FOLIOVAL_LEDGER", "/tmp/other.jsonl")
	t.Setenv("FOLIOVAL_RISK_FREE_RATE", "0.04")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "CHF", cfg.Currency, "environment beats the file")
	assert.Equal(t, "/tmp/other.jsonl", cfg.LedgerFile)
	assert.Equal(t, 0.04, cfg.RiskFreeRate)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folioval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
