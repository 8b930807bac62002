package folioval

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration, loaded from a YAML file with
// environment variable overrides.
type Config struct {
	// Currency is the portfolio's native currency code.
	Currency string `yaml:"currency"`
	// LedgerFile is the path of the JSONL transaction log.
	LedgerFile string `yaml:"ledger_file"`
	// CachePath selects the persistent price cache database; empty keeps
	// the cache in memory.
	CachePath string `yaml:"cache_path"`
	// CacheTTLMinutes is the freshness window of price snapshots.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
	// RiskFreeRate is the annual risk-free rate as a ratio (0.02 for 2%).
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	// CryptoSymbols lists the instruments routed to the crypto provider,
	// in addition to the built-in set.
	CryptoSymbols []string `yaml:"crypto_symbols"`
	// Proxy extends the provider transport rotation.
	Proxy string `yaml:"proxy"`

	Goal struct {
		Target              float64 `yaml:"target"`
		MonthlyContribution float64 `yaml:"monthly_contribution"`
		AnnualGrowth        float64 `yaml:"annual_growth"`
	} `yaml:"goal"`

	Projection struct {
		Months       int     `yaml:"months"`
		AnnualGrowth float64 `yaml:"annual_growth"`
	} `yaml:"projection"`
}

// builtinCryptoSymbols is the static crypto-class membership test; config
// can only extend it.
var builtinCryptoSymbols = []string{"BTC", "ETH", "ADA", "SOL", "DOT", "LTC", "XRP", "DOGE"}

// LoadConfig reads the configuration file, applies environment overrides
// and fills defaults. A missing file is not an error: the defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FOLIOVAL_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("FOLIOVAL_LEDGER"); v != "" {
		cfg.LedgerFile = v
	}
	if v := os.Getenv("FOLIOVAL_CACHE"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("FOLIOVAL_RISK_FREE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RiskFreeRate = rate
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.LedgerFile == "" {
		cfg.LedgerFile = "transactions.jsonl"
	}
	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = int(DefaultCacheTTL / time.Minute)
	}
	if cfg.Projection.Months < 0 {
		cfg.Projection.Months = 0
	}
	cfg.CryptoSymbols = append(cfg.CryptoSymbols, builtinCryptoSymbols...)

	return cfg, nil
}

// CacheTTL returns the snapshot freshness window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// GoalInput converts the configured goal into the analytics input.
func (c *Config) GoalInput() GoalInput {
	return GoalInput{
		Target:              c.Goal.Target,
		MonthlyContribution: c.Goal.MonthlyContribution,
		AnnualGrowth:        c.Goal.AnnualGrowth,
	}
}
