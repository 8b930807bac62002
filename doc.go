// Package folioval values a personal investment portfolio and derives its
// performance statistics from an append-only transaction ledger.
//
// The core functionalities include:
//   - Ledger Replay: Reconstructing open positions and the cash balance at
//     any date from buy, sell, deposit and withdrawal events, using
//     average-cost accounting with commissions folded into the basis.
//   - Price Resolution: Fetching current and historical prices from market
//     data providers, with a TTL-bounded cache, retry with backoff, and
//     explicit markers for instruments that could not be priced.
//   - Monthly Valuation: Generating a gap-free month-by-month series of
//     market value, cash balance, net external cash flow and period return,
//     bridging missing prices with a deterministic fallback chain.
//   - Performance Analytics: CAGR, time-weighted return, maximum drawdown,
//     recovery time, Sharpe and Sortino ratios, annualized volatility and
//     goal projections, all computed from the realized series.
//   - Data Persistence: Human-readable JSONL for the ledger and an optional
//     SQLite database for the price cache.
//
// This package serves as the foundational logic for the `fv` command-line
// tool.
package folioval
