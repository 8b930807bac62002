package folioval

import (
	"testing"
	"time"
)

func TestHoldingsAverageCost(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewBuy("t1", NewDate(2025, time.January, 10), "AAPL", Q(10), EUR(100), EUR(10)),
		NewBuy("t2", NewDate(2025, time.February, 10), "AAPL", Q(10), EUR(200), EUR(10)),
	)
	cutoff := NewDate(2025, time.December, 31)

	h := l.HoldingsAsOf(cutoff)["AAPL"]
	if !h.Quantity.Equal(Q(20)) {
		t.Fatalf("Quantity = %v, want 20", h.Quantity)
	}
	// (10*100+10) + (10*200+10) = 3020, avg 151.
	if !h.TotalCost.Equal(EUR(3020)) {
		t.Errorf("TotalCost = %v, want 3020 (commissions in basis)", h.TotalCost)
	}
	if !h.AvgPrice().Equal(EUR(151)) {
		t.Errorf("AvgPrice() = %v, want 151", h.AvgPrice())
	}

	// Selling reduces the basis at average cost; the remaining units keep
	// the same average price.
	l.Append(NewSell("t3", NewDate(2025, time.March, 10), "AAPL", Q(5), EUR(300), EUR(10)))
	h = l.HoldingsAsOf(cutoff)["AAPL"]
	if !h.Quantity.Equal(Q(15)) {
		t.Fatalf("Quantity after sell = %v, want 15", h.Quantity)
	}
	if !h.TotalCost.Equal(EUR(2265)) {
		t.Errorf("TotalCost after sell = %v, want 2265", h.TotalCost)
	}
	if !h.AvgPrice().Equal(EUR(151)) {
		t.Errorf("AvgPrice() after sell = %v, want 151 unchanged", h.AvgPrice())
	}

	// The invariant AvgPrice * Quantity == TotalCost holds at every step.
	if got := h.AvgPrice().Mul(h.Quantity); !got.Equal(h.TotalCost) {
		t.Errorf("AvgPrice*Quantity = %v, want %v", got, h.TotalCost)
	}
}

func TestHoldingsClosedPositionExcluded(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewBuy("t1", NewDate(2025, time.January, 10), "AAPL", Q(10), EUR(100), EUR(1)),
		NewSell("t2", NewDate(2025, time.February, 10), "AAPL", Q(10), EUR(110), EUR(1)),
	)
	holdings := l.HoldingsAsOf(NewDate(2025, time.December, 31))
	if _, ok := holdings["AAPL"]; ok {
		t.Error("closed position still present in holdings")
	}

	// Before the sell, the position is open.
	holdings = l.HoldingsAsOf(NewDate(2025, time.January, 31))
	if h, ok := holdings["AAPL"]; !ok || !h.Quantity.Equal(Q(10)) {
		t.Errorf("holdings before sell = %+v, want open position of 10", holdings)
	}
}

func TestHoldingsCutoffExcludesLaterTransactions(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewBuy("t1", NewDate(2025, time.January, 10), "AAPL", Q(10), EUR(100), Money{}),
		NewBuy("t2", NewDate(2025, time.June, 10), "AAPL", Q(10), EUR(100), Money{}),
	)
	h := l.HoldingsAsOf(NewDate(2025, time.March, 31))["AAPL"]
	if !h.Quantity.Equal(Q(10)) {
		t.Errorf("Quantity = %v, want 10 (later buy excluded)", h.Quantity)
	}
	// The cutoff is inclusive.
	h = l.HoldingsAsOf(NewDate(2025, time.June, 10))["AAPL"]
	if !h.Quantity.Equal(Q(20)) {
		t.Errorf("Quantity on cutoff day = %v, want 20 (cutoff inclusive)", h.Quantity)
	}
}

func TestHoldingsCategoryFollowsLatestLabel(t *testing.T) {
	l := NewLedger("EUR")
	first := NewBuy("t1", NewDate(2025, time.January, 10), "VWCE", Q(1), EUR(100), Money{})
	first.Category = "fund"
	second := NewBuy("t2", NewDate(2025, time.February, 10), "VWCE", Q(1), EUR(100), Money{})
	second.Category = "etf"
	l.Append(first, second)

	if got := l.HoldingsAsOf(NewDate(2025, time.December, 31))["VWCE"].Category; got != "etf" {
		t.Errorf("Category = %q, want the latest label", got)
	}
}

// TestCashRoundTrip replays a full buy/sell cycle: the cash account ends up
// with the trade's net result, gross profit minus both commissions.
func TestCashRoundTrip(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewBuy("t1", NewDate(2025, time.January, 10), "AAPL", Q(10), EUR(100), EUR(1)),
		NewSell("t2", NewDate(2025, time.February, 10), "AAPL", Q(10), EUR(110), EUR(1)),
	)
	cutoff := NewDate(2025, time.December, 31)

	// -1001 on the buy, +1099 on the sell.
	if got := l.CashBalanceAsOf(cutoff); !got.Equal(EUR(98)) {
		t.Errorf("CashBalanceAsOf() = %v, want 98", got)
	}
	if len(l.HoldingsAsOf(cutoff)) != 0 {
		t.Error("holdings not empty after the round trip")
	}
}

func TestCashLedgerSigns(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewDeposit("t1", NewDate(2025, time.January, 5), EUR(1000)),
		NewBuy("t2", NewDate(2025, time.January, 10), "AAPL", Q(5), EUR(100), EUR(1)),
		NewSell("t3", NewDate(2025, time.February, 10), "AAPL", Q(5), EUR(110), EUR(1)),
		NewWithdraw("t4", NewDate(2025, time.February, 20), EUR(200)),
	)

	want := []struct {
		kind     CashEntryKind
		amount   Money
		external bool
	}{
		{CashDeposit, EUR(1000), true},
		{CashPurchase, EUR(-501), false},
		{CashSale, EUR(549), false},
		{CashWithdrawal, EUR(-200), true},
	}
	entries := l.CashLedger()
	if len(entries) != len(want) {
		t.Fatalf("CashLedger() returned %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		e := entries[i]
		if e.Kind != w.kind || !e.Amount.Equal(w.amount) || e.External != w.external {
			t.Errorf("entry %d = %+v, want kind=%s amount=%v external=%v", i, e, w.kind, w.amount, w.external)
		}
	}

	if got := l.CashBalanceAsOf(NewDate(2025, time.December, 31)); !got.Equal(EUR(848)) {
		t.Errorf("CashBalanceAsOf() = %v, want 848", got)
	}
}

// TestNetCashFlowCountsExternalOnly asserts that asset purchases and sales
// never count as portfolio in/out flows.
func TestNetCashFlowCountsExternalOnly(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(
		NewDeposit("t1", NewDate(2025, time.March, 5), EUR(1000)),
		NewWithdraw("t2", NewDate(2025, time.March, 20), EUR(300)),
		NewBuy("t3", NewDate(2025, time.March, 10), "AAPL", Q(5), EUR(100), EUR(1)),
		NewSell("t4", NewDate(2025, time.March, 15), "AAPL", Q(2), EUR(110), EUR(1)),
		NewDeposit("t5", NewDate(2025, time.April, 5), EUR(400)),
	)

	if got := l.NetCashFlow(NewMonth(2025, time.March)); !got.Equal(EUR(700)) {
		t.Errorf("NetCashFlow(March) = %v, want 700 (trades excluded)", got)
	}
	if got := l.NetCashFlow(NewMonth(2025, time.April)); !got.Equal(EUR(400)) {
		t.Errorf("NetCashFlow(April) = %v, want 400", got)
	}
	if got := l.NetCashFlow(NewMonth(2025, time.May)); !got.IsZero() {
		t.Errorf("NetCashFlow(May) = %v, want 0", got)
	}
}

func TestCashBalanceMayGoNegative(t *testing.T) {
	l := NewLedger("EUR")
	l.Append(NewBuy("t1", NewDate(2025, time.January, 10), "AAPL", Q(10), EUR(100), EUR(1)))
	if got := l.CashBalanceAsOf(NewDate(2025, time.December, 31)); !got.Equal(EUR(-1001)) {
		t.Errorf("CashBalanceAsOf() = %v, want -1001 (never clamped)", got)
	}
}
