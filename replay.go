package folioval

// Holding is a derived position in one instrument as of a cutoff date.
// Holdings are recomputed from the ledger on demand and never persisted,
// so they cannot drift from the transaction log.
type Holding struct {
	Instrument string
	Category   string
	Quantity   Quantity
	TotalCost  Money // average-cost basis, commissions included
}

// AvgPrice returns TotalCost / Quantity, or zero for an empty position.
func (h Holding) AvgPrice() Money {
	if h.Quantity.IsZero() {
		return Money{}
	}
	return h.TotalCost.Div(h.Quantity)
}

// CashEntryKind classifies a cash ledger flow.
type CashEntryKind string

const (
	CashDeposit    CashEntryKind = "deposit"
	CashWithdrawal CashEntryKind = "withdrawal"
	CashPurchase   CashEntryKind = "purchase"
	CashSale       CashEntryKind = "sale"
)

// CashEntry is one derived flow of the cash account. Deposits and sales are
// positive, withdrawals and purchases negative. The running sum up to a date
// is the available cash balance; it may legitimately go negative and is
// never clamped.
type CashEntry struct {
	Date     Date
	Amount   Money
	Kind     CashEntryKind
	External bool // true for deposits/withdrawals, the portfolio's real in/out flows
}

// HoldingsAsOf folds the ledger into per-instrument holdings as of the
// cutoff date (inclusive). Positions with a resulting quantity <= 0 are
// closed and excluded from the result.
func (l *Ledger) HoldingsAsOf(cutoff Date) map[string]Holding {
	open := make(map[string]Holding)
	for _, tx := range l.transactions {
		if tx.Date.After(cutoff) {
			// Transactions are sorted, the rest is beyond the cutoff.
			break
		}
		if tx.IsCash {
			continue
		}
		h := open[tx.Instrument]
		h.Instrument = tx.Instrument
		if tx.Category != "" {
			h.Category = tx.Category
		}
		switch tx.Kind {
		case KindBuy:
			h.Quantity = h.Quantity.Add(tx.Quantity)
			h.TotalCost = h.TotalCost.Add(tx.Cost())
		case KindSell:
			// The basis of the units sold is their average cost at sale
			// time, not the sale proceeds; the remaining units keep the
			// same average price.
			if h.Quantity.IsPositive() {
				costOfSale := h.TotalCost.Mul(tx.Quantity).Div(h.Quantity)
				h.TotalCost = h.TotalCost.Sub(costOfSale)
			}
			h.Quantity = h.Quantity.Sub(tx.Quantity)
		}
		open[tx.Instrument] = h
	}
	for id, h := range open {
		if !h.Quantity.IsPositive() {
			delete(open, id)
		}
	}
	return open
}

// CashLedger folds the whole ledger into the ordered list of cash flows.
func (l *Ledger) CashLedger() []CashEntry {
	entries := make([]CashEntry, 0, len(l.transactions))
	for _, tx := range l.transactions {
		entries = append(entries, cashEntry(tx))
	}
	return entries
}

// cashEntry derives the signed cash flow of one transaction.
func cashEntry(tx Transaction) CashEntry {
	e := CashEntry{Date: tx.Date}
	switch {
	case tx.IsCash && tx.Kind == KindBuy:
		e.Kind, e.Amount, e.External = CashDeposit, tx.Gross(), true
	case tx.IsCash && tx.Kind == KindSell:
		e.Kind, e.Amount, e.External = CashWithdrawal, tx.Gross().Neg(), true
	case tx.Kind == KindBuy:
		e.Kind, e.Amount = CashPurchase, tx.Cost().Neg()
	default:
		e.Kind, e.Amount = CashSale, tx.Proceeds()
	}
	return e
}

// CashBalanceAsOf returns the cumulative cash balance up to the cutoff date
// (inclusive).
func (l *Ledger) CashBalanceAsOf(cutoff Date) Money {
	balance := M(0, l.currency)
	for _, tx := range l.transactions {
		if tx.Date.After(cutoff) {
			break
		}
		balance = balance.Add(cashEntry(tx).Amount)
	}
	return balance
}

// NetCashFlow returns the sum of external flows (deposits minus withdrawals)
// within the month. Asset purchases and sales are transfers between cash and
// market value, not flows into or out of the portfolio, so they are excluded.
func (l *Ledger) NetCashFlow(month Month) Money {
	flow := M(0, l.currency)
	for _, tx := range l.transactions {
		if tx.Date.After(month.End()) {
			break
		}
		if !month.Contains(tx.Date) || !tx.IsCash {
			continue
		}
		flow = flow.Add(cashEntry(tx).Amount)
	}
	return flow
}
