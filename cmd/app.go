// Package cmd implements the CLI application to inspect and value a portfolio.
package cmd

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"time"

	"folioval"

	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() to allow subcommands, and Execute() on the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&removeCmd{}, "transactions")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&monthlyCmd{}, "reports")
	c.Register(&perfCmd{}, "reports")
	c.Register(&goalCmd{}, "reports")

	c.Register(&fetchCmd{}, "prices")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configFile = flag.String("config", "folioval.yaml", "Path to the configuration file (YAML)")
var ledgerFile = flag.String("ledger-file", "", "Path to the ledger file (JSONL format), overrides the configuration")

// newEngine wires the full engine from the configuration: file store,
// price cache, market data providers and resolver.
func newEngine() (*folioval.Engine, *folioval.Config, error) {
	cfg, err := folioval.LoadConfig(*configFile)
	if err != nil {
		return nil, nil, err
	}
	if *ledgerFile != "" {
		cfg.LedgerFile = *ledgerFile
	}

	var cache folioval.PriceCache
	if cfg.CachePath != "" {
		sq, err := folioval.NewSQLiteCache(cfg.CachePath, cfg.CacheTTL())
		if err != nil {
			log.Printf("[WARN] persistent cache unavailable, falling back to memory: %v", err)
			cache = folioval.NewMemoryCache(cfg.CacheTTL())
		} else {
			cache = sq
		}
	} else {
		cache = folioval.NewMemoryCache(cfg.CacheTTL())
	}

	var proxies []string
	if cfg.Proxy != "" {
		proxies = append(proxies, cfg.Proxy)
	}
	securities := folioval.NewYahooProvider(10*time.Second, proxies...)
	crypto := folioval.NewCoinGeckoProvider(cfg.Currency, 10*time.Second)
	resolver := folioval.NewResolver(cache, crypto, securities, cfg.CryptoSymbols)

	store := folioval.NewFileStore(cfg.LedgerFile, cfg.Currency)
	return folioval.NewEngine(store, resolver, cfg), cfg, nil
}

// newID returns a random identifier for a new transaction.
func newID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
