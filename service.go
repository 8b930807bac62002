package folioval

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/singleflight"
)

// Engine is the facade exposed to the rendering/reporting layer. It always
// computes the full valuation series internally; filters narrow the result
// afterwards, keeping the valuation logic filter-agnostic.
type Engine struct {
	store    Store
	resolver *Resolver
	currency string
	riskFree float64
	goal     GoalInput

	// group serializes concurrent valuation passes: two refresh triggers
	// share one network fan-out instead of duplicating it.
	group singleflight.Group
}

// NewEngine wires the engine from its collaborators.
func NewEngine(store Store, resolver *Resolver, cfg *Config) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		currency: cfg.Currency,
		riskFree: cfg.RiskFreeRate,
		goal:     cfg.GoalInput(),
	}
}

// ledger loads the transaction log from the store into a sorted Ledger.
// The store may return transactions in any order.
func (e *Engine) ledger() (*Ledger, error) {
	txs, err := e.store.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	ledger := NewLedger(e.currency)
	ledger.Append(txs...)
	return ledger, nil
}

// Holdings returns the open positions as of the cutoff date (today when
// zero), sorted by instrument.
func (e *Engine) Holdings(cutoff Date) ([]Holding, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, err
	}
	if cutoff.IsZero() {
		cutoff = Today()
	}
	byID := ledger.HoldingsAsOf(cutoff)
	holdings := make([]Holding, 0, len(byID))
	for _, h := range byID {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Instrument < holdings[j].Instrument
	})
	return holdings, nil
}

// CashBalance returns the available cash as of the cutoff date (today when
// zero). It may legitimately be negative.
func (e *Engine) CashBalance(cutoff Date) (Money, error) {
	ledger, err := e.ledger()
	if err != nil {
		return Money{}, err
	}
	if cutoff.IsZero() {
		cutoff = Today()
	}
	return ledger.CashBalanceAsOf(cutoff), nil
}

// ResolvePrices resolves the current price of every instrument the ledger
// ever traded. Closed positions are included so historical months can still
// be priced.
func (e *Engine) ResolvePrices(ctx context.Context) (map[string]Resolution, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, err
	}
	return e.resolver.ResolveCurrent(ctx, ledger.Instruments()), nil
}

// MonthlySeries computes the full monthly valuation series. Concurrent
// callers share a single computation through the in-flight guard; a
// cancelled context aborts the pass without committing partial prices.
func (e *Engine) MonthlySeries(ctx context.Context) ([]MonthlyPoint, error) {
	v, err, _ := e.group.Do("monthly-series", func() (any, error) {
		ledger, err := e.ledger()
		if err != nil {
			return nil, err
		}
		if ledger.Len() == 0 {
			return []MonthlyPoint(nil), nil
		}
		instruments := ledger.Instruments()

		tables, err := e.resolver.HistoricalTables(ctx, instruments)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			// Partial history is expected; the fallback chain covers gaps.
			log.Printf("[WARN] incomplete price history: %v", err)
		}

		resolutions := e.resolver.ResolveCurrent(ctx, instruments)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		prices := make(map[string]PriceSnapshot, len(resolutions))
		for id, res := range resolutions {
			if res.Resolved() {
				prices[id] = res.Snapshot
			}
		}
		return BuildMonthlySeries(ledger, tables, prices), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]MonthlyPoint), nil
}

// SeriesFilter narrows a computed series for presentation. Filters are
// applied after the full computation, never inside it.
type SeriesFilter struct {
	Year     int    // 0 keeps all years
	Category string // "" keeps the aggregate view
}

// FilterSeries narrows the series by year and/or category. With a category
// filter, each point's market value is the category's slice and the cash
// balance is dropped (cash belongs to no asset category).
func FilterSeries(series []MonthlyPoint, f SeriesFilter) []MonthlyPoint {
	out := make([]MonthlyPoint, 0, len(series))
	for _, p := range series {
		if f.Year != 0 && p.Month.Year() != f.Year {
			continue
		}
		if f.Category != "" {
			value := p.ByCategory[f.Category]
			p.MarketValue = value
			p.CashBalance = Money{}
			p.TotalEquity = value
			p.ByCategory = nil
		}
		out = append(out, p)
	}
	return out
}

// PerformanceSummary computes the full series, then derives every
// performance statistic from its realized points. initialOverride, when
// positive, replaces the first month's equity as the CAGR baseline.
func (e *Engine) PerformanceSummary(ctx context.Context, initialOverride float64) (Summary, error) {
	series, err := e.MonthlySeries(ctx)
	if err != nil {
		return Summary{}, err
	}
	return NewSummary(series, e.riskFree, initialOverride, e.goal), nil
}

// AppendTransaction validates and stores a new ledger event.
func (e *Engine) AppendTransaction(tx Transaction) error {
	tx = tx.normalize(e.currency)
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid %s transaction on %v: %w", tx.Kind, tx.Date, err)
	}
	return e.store.AppendTransaction(tx)
}

// RemoveTransaction deletes a ledger event by id. Prefer appending an
// offsetting transaction; removal exists for correcting ingestion mistakes.
func (e *Engine) RemoveTransaction(id string) error {
	return e.store.RemoveTransaction(id)
}

// Transactions returns the ledger events in chronological order, along
// with the warnings collected while decoding them.
func (e *Engine) Transactions() ([]Transaction, []string, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, nil, err
	}
	return ledger.Transactions(), ledger.Warnings(), nil
}

// Categories lists the classification labels in use.
func (e *Engine) Categories() ([]string, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, err
	}
	return ledger.Categories(), nil
}
