package folioval

import (
	"iter"
	"slices"
	"sort"
)

// PricePoint is one raw observation of a provider's historical series.
type PricePoint struct {
	Date  Date
	Price float64
}

// PriceTable is a month-keyed price lookup table for one instrument.
// Months are unique and kept in chronological order.
type PriceTable struct {
	months []Month
	prices []float64
}

// BuildPriceTable folds a raw historical series into a month-keyed table.
// When a month has several observations, the last chronological one wins.
// An empty input yields an empty table, never an error.
func BuildPriceTable(series []PricePoint) *PriceTable {
	points := slices.Clone(series)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	t := &PriceTable{}
	for _, p := range points {
		t.Append(p.Date.MonthKey(), p.Price)
	}
	return t
}

// Len returns the number of months in the table.
func (t *PriceTable) Len() int { return len(t.months) }

// Append sets the price for a month, overwriting any existing value. Later
// entries get priority, which implements the last-observation-wins rule.
func (t *PriceTable) Append(month Month, price float64) {
	if i := slices.Index(t.months, month); i >= 0 {
		t.prices[i] = price
		return
	}
	t.months, t.prices = append(t.months, month), append(t.prices, price)
	sort.Sort(chronological{t})
}

// chronological sorts the parallel month/price slices together.
type chronological struct{ *PriceTable }

func (s chronological) Len() int           { return len(s.months) }
func (s chronological) Less(i, j int) bool { return s.months[i].Before(s.months[j]) }
func (s chronological) Swap(i, j int) {
	s.months[i], s.months[j] = s.months[j], s.months[i]
	s.prices[i], s.prices[j] = s.prices[j], s.prices[i]
}

// Get returns the exact price recorded for a month.
func (t *PriceTable) Get(month Month) (float64, bool) {
	if i := slices.Index(t.months, month); i >= 0 {
		return t.prices[i], true
	}
	return 0, false
}

// AsOf returns the most recent positive price at or before the given month,
// scanning backward. Non-positive values are rejected, never returned.
func (t *PriceTable) AsOf(month Month) (float64, bool) {
	i, found := slices.BinarySearchFunc(t.months, month, func(m, target Month) int {
		if m.After(target) {
			return 1
		}
		if m.Before(target) {
			return -1
		}
		return 0
	})
	if !found {
		i-- // last entry before the target month
	}
	for ; i >= 0; i-- {
		if t.prices[i] > 0 {
			return t.prices[i], true
		}
	}
	return 0, false
}

// Latest returns the last month and price in the table, or zero values for
// an empty table.
func (t *PriceTable) Latest() (Month, float64) {
	last := len(t.months) - 1
	if last < 0 {
		return Month{}, 0
	}
	return t.months[last], t.prices[last]
}

// Values iterates over all month/price pairs in chronological order.
func (t *PriceTable) Values() iter.Seq2[Month, float64] {
	return func(yield func(Month, float64) bool) {
		for i, m := range t.months {
			if !yield(m, t.prices[i]) {
				return
			}
		}
	}
}
