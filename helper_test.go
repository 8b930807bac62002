package folioval

// Test helpers shared across the package tests.

func EUR(v float64) Money { return M(v, "EUR") }

// point builds a minimal valuation point for the analytics tests, where
// only equity and external flow matter.
func point(month string, equity, flow float64, ret Percent) MonthlyPoint {
	p, err := ParseMonth(month)
	if err != nil {
		panic(err)
	}
	return MonthlyPoint{
		Month:        p,
		TotalEquity:  EUR(equity),
		NetCashFlow:  EUR(flow),
		PeriodReturn: ret,
	}
}

// equitySeries builds a series from raw equity values, deriving the period
// returns as if there were no external flows.
func equitySeries(values ...float64) []MonthlyPoint {
	series := make([]MonthlyPoint, 0, len(values))
	month := MustParseDate("2024-01-01").MonthKey()
	for i, v := range values {
		var ret Percent
		if i > 0 {
			ret = periodReturn(values[i-1], v, 0)
		}
		series = append(series, point(month.String(), v, 0, ret))
		month = month.Next()
	}
	return series
}
