package folioval

import (
	"math"
	"slices"
)

// MonthlyPoint is one generated point of the valuation series, one per
// calendar month from the first transaction to the current month. Points
// are derived, never mutated.
type MonthlyPoint struct {
	Month        Month            `json:"period"`
	MarketValue  Money            `json:"marketValue"`
	CashBalance  Money            `json:"cashBalance"`
	TotalEquity  Money            `json:"totalEquity"`
	NetCashFlow  Money            `json:"netCashFlow"`
	PeriodReturn Percent          `json:"periodReturn"`
	ByCategory   map[string]Money `json:"byCategory,omitempty"`
	// Unpriced lists still-held instruments that exhausted the whole price
	// fallback chain this month and contributed zero market value. A
	// non-empty list marks the point as partial, so renderers can tell
	// "zero" from "unknown".
	Unpriced []string `json:"unpriced,omitempty"`
	// Projected marks forward-projected points. They are excluded from all
	// backward-looking statistics.
	Projected bool `json:"projected,omitempty"`
}

// Realized returns the series without projected points.
func Realized(series []MonthlyPoint) []MonthlyPoint {
	return slices.DeleteFunc(slices.Clone(series), func(p MonthlyPoint) bool {
		return p.Projected
	})
}

// resolveMonthPrice applies the price-lookup fallback chain for one
// (instrument, month), in strict order, stopping at the first hit:
//
//  1. the exact historical price for that month;
//  2. for the current month, the live/cached current price;
//  3. the most recent positive historical price at or before that month;
//  4. the current price as a last resort (instruments with no historical
//     coverage at all).
//
// It returns false only when the whole chain is exhausted.
func resolveMonthPrice(instrument string, month, current Month, tables map[string]*PriceTable, prices map[string]PriceSnapshot) (float64, bool) {
	table := tables[instrument]
	if table != nil {
		if price, ok := table.Get(month); ok && price > 0 {
			return price, true
		}
	}
	snap, live := prices[instrument]
	live = live && snap.Price > 0
	if month == current && live {
		return snap.Price, true
	}
	if table != nil {
		if price, ok := table.AsOf(month); ok {
			return price, true
		}
	}
	if live {
		return snap.Price, true
	}
	return 0, false
}

// BuildMonthlySeries replays the ledger into the monthly valuation series,
// gap-free from the first transaction's month to the current month. An
// empty ledger yields an empty series.
//
// A still-held instrument with no resolvable price contributes zero market
// value for that month and is listed in the point's Unpriced field; the
// series stays complete rather than failing closed.
func BuildMonthlySeries(l *Ledger, tables map[string]*PriceTable, prices map[string]PriceSnapshot) []MonthlyPoint {
	if l.Len() == 0 {
		return nil
	}
	now := ThisMonth()
	months := MonthsBetween(l.FirstDate().MonthKey(), now)
	series := make([]MonthlyPoint, 0, len(months))

	prevEquity := 0.0
	for i, month := range months {
		point := MonthlyPoint{Month: month}
		holdings := l.HoldingsAsOf(month.End())

		marketValue := M(0, l.currency)
		byCategory := make(map[string]Money)
		for _, h := range holdings {
			price, ok := resolveMonthPrice(h.Instrument, month, now, tables, prices)
			if !ok {
				point.Unpriced = append(point.Unpriced, h.Instrument)
				continue
			}
			value := M(price, l.currency).Mul(h.Quantity)
			marketValue = marketValue.Add(value)
			if h.Category != "" {
				byCategory[h.Category] = byCategory[h.Category].WithCurrency(l.currency).Add(value)
			}
		}
		slices.Sort(point.Unpriced)

		point.MarketValue = marketValue
		point.CashBalance = l.CashBalanceAsOf(month.End())
		point.TotalEquity = marketValue.Add(point.CashBalance)
		point.NetCashFlow = l.NetCashFlow(month)
		if len(byCategory) > 0 {
			point.ByCategory = byCategory
		}

		if i > 0 {
			point.PeriodReturn = periodReturn(prevEquity, point.TotalEquity.AsFloat(), point.NetCashFlow.AsFloat())
		}
		prevEquity = point.TotalEquity.AsFloat()
		series = append(series, point)
	}
	return series
}

// periodReturn is the time-weighted return of one month:
// (end - (start + flow)) / (start + flow), with a non-positive denominator
// guarded to zero instead of letting NaN or Inf into the series.
func periodReturn(startEquity, endEquity, netCashFlow float64) Percent {
	denom := startEquity + netCashFlow
	if denom <= 0 {
		return 0
	}
	return Percent(100 * (endEquity - denom) / denom)
}

// ProjectForward extends the series n months into the future, assuming the
// trailing 6-month average external cash flow repeats and the market value
// compounds at the given fixed annual rate. Projected points are tagged and
// never enter the backward-looking statistics.
func ProjectForward(series []MonthlyPoint, n int, annualGrowth float64) []MonthlyPoint {
	realized := Realized(series)
	if len(realized) == 0 || n <= 0 {
		return series
	}
	last := realized[len(realized)-1]
	currency := last.TotalEquity.Currency()

	trailing := realized
	if len(trailing) > 6 {
		trailing = trailing[len(trailing)-6:]
	}
	avgFlow := 0.0
	for _, p := range trailing {
		avgFlow += p.NetCashFlow.AsFloat()
	}
	avgFlow /= float64(len(trailing))

	monthlyRate := math.Pow(1+annualGrowth, 1.0/12) - 1

	out := slices.Clone(series)
	marketValue := last.MarketValue.AsFloat()
	cash := last.CashBalance.AsFloat()
	month := last.Month
	prevEquity := last.TotalEquity.AsFloat()
	for i := 0; i < n; i++ {
		month = month.Next()
		marketValue *= 1 + monthlyRate
		cash += avgFlow
		equity := marketValue + cash
		out = append(out, MonthlyPoint{
			Month:        month,
			MarketValue:  M(marketValue, currency),
			CashBalance:  M(cash, currency),
			TotalEquity:  M(equity, currency),
			NetCashFlow:  M(avgFlow, currency),
			PeriodReturn: periodReturn(prevEquity, equity, avgFlow),
			Projected:    true,
		})
		prevEquity = equity
	}
	return out
}
