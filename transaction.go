package folioval

import (
	"errors"
	"fmt"
	"strings"
)

// TxKind is a typed string identifying the direction of a transaction.
type TxKind string

const (
	// KindBuy acquires units of an instrument, or deposits cash when IsCash is set.
	KindBuy TxKind = "buy"
	// KindSell disposes units of an instrument, or withdraws cash when IsCash is set.
	KindSell TxKind = "sell"
)

// Transaction is one immutable event of the append-only ledger. Corrections
// are modeled as new offsetting transactions, never as mutations.
//
// Quantity times UnitPrice is always in the instrument's native currency.
// A cash movement (IsCash true) uses the same shape: buy deposits
// Quantity*UnitPrice, sell withdraws it, and the commission is ignored.
type Transaction struct {
	ID         string   `json:"id"`
	Instrument string   `json:"instrument"`
	Date       Date     `json:"date"`
	Kind       TxKind   `json:"kind"`
	Quantity   Quantity `json:"quantity"`
	UnitPrice  Money    `json:"unitPrice"`
	Commission Money    `json:"commission,omitempty"`
	IsCash     bool     `json:"isCash,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// NewBuy creates a buy transaction for an instrument.
func NewBuy(id string, day Date, instrument string, quantity Quantity, unitPrice, commission Money) Transaction {
	return Transaction{
		ID: id, Instrument: instrument, Date: day, Kind: KindBuy,
		Quantity: quantity, UnitPrice: unitPrice, Commission: commission,
	}
}

// NewSell creates a sell transaction for an instrument.
func NewSell(id string, day Date, instrument string, quantity Quantity, unitPrice, commission Money) Transaction {
	return Transaction{
		ID: id, Instrument: instrument, Date: day, Kind: KindSell,
		Quantity: quantity, UnitPrice: unitPrice, Commission: commission,
	}
}

// NewDeposit creates a cash deposit of the given amount.
func NewDeposit(id string, day Date, amount Money) Transaction {
	return Transaction{
		ID: id, Instrument: "CASH", Date: day, Kind: KindBuy,
		Quantity: Q(1), UnitPrice: amount, IsCash: true,
	}
}

// NewWithdraw creates a cash withdrawal of the given amount.
func NewWithdraw(id string, day Date, amount Money) Transaction {
	return Transaction{
		ID: id, Instrument: "CASH", Date: day, Kind: KindSell,
		Quantity: Q(1), UnitPrice: amount, IsCash: true,
	}
}

// Gross returns Quantity * UnitPrice, before commission.
func (t Transaction) Gross() Money { return t.UnitPrice.Mul(t.Quantity) }

// Cost returns the total cash debited by a buy: gross plus commission.
// The commission is part of the cost basis.
func (t Transaction) Cost() Money {
	if t.IsCash {
		return t.Gross()
	}
	return t.Gross().Add(t.Commission)
}

// Proceeds returns the cash credited by a sell: gross minus commission.
func (t Transaction) Proceeds() Money {
	if t.IsCash {
		return t.Gross()
	}
	return t.Gross().Sub(t.Commission)
}

// Validate checks the transaction's basic shape. A transaction that fails
// validation is skipped with a warning during replay; it never aborts it.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("transaction date is missing")
	}
	switch t.Kind {
	case KindBuy, KindSell:
	default:
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	if t.Instrument == "" {
		return errors.New("instrument identifier is missing")
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", t.Quantity)
	}
	if t.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative, got %s", t.UnitPrice)
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("commission must not be negative, got %s", t.Commission)
	}
	return nil
}

// legacyCashCategories are classification labels historic records used as an
// implicit cash marker before the explicit isCash field existed.
var legacyCashCategories = map[string]bool{
	"cash":      true,
	"liquidity": true,
	"deposit":   true,
}

// normalize fixes up a transaction decoded from storage: it assigns the
// ledger currency to amounts and migrates legacy records that marked cash
// movements through their category instead of the isCash field.
func (t Transaction) normalize(currency string) Transaction {
	t.UnitPrice = t.UnitPrice.WithCurrency(currency)
	t.Commission = t.Commission.WithCurrency(currency)
	if !t.IsCash && legacyCashCategories[strings.ToLower(t.Category)] {
		t.IsCash = true
	}
	return t
}
