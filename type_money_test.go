package folioval

import (
	"encoding/json"
	"testing"
)

func TestMoneyArithmetic(t *testing.T) {
	a := EUR(100.50)
	b := EUR(0.25)

	if got := a.Add(b); !got.Equal(EUR(100.75)) {
		t.Errorf("Add() = %v, want 100.75", got)
	}
	if got := a.Sub(b); !got.Equal(EUR(100.25)) {
		t.Errorf("Sub() = %v, want 100.25", got)
	}
	if got := a.Neg(); !got.Equal(EUR(-100.50)) {
		t.Errorf("Neg() = %v, want -100.50", got)
	}
	if got := EUR(10).Mul(Q(3)); !got.Equal(EUR(30)) {
		t.Errorf("Mul() = %v, want 30", got)
	}
	if got := EUR(10).Div(Q(4)); !got.Equal(EUR(2.5)) {
		t.Errorf("Div() = %v, want 2.5", got)
	}
}

// TestMoneyDecimalExactness is why Money is not a float: the classic
// 0.1+0.2 case must come out exact.
func TestMoneyDecimalExactness(t *testing.T) {
	if got := EUR(0.1).Add(EUR(0.2)); !got.Equal(EUR(0.3)) {
		t.Errorf("0.1 + 0.2 = %v, want exactly 0.3", got)
	}
}

func TestMoneyCurrencyMerge(t *testing.T) {
	// A currency-less amount adopts the other operand's currency.
	got := M(10, "").Add(EUR(5))
	if got.Currency() != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got.Currency())
	}
	got = EUR(5).Add(M(10, ""))
	if got.Currency() != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got.Currency())
	}
}

func TestMoneyWithCurrency(t *testing.T) {
	m := M(10, "").WithCurrency("USD")
	if m.Currency() != "USD" {
		t.Errorf("Currency() = %q, want USD", m.Currency())
	}
	if !m.Equal(M(10, "USD")) {
		t.Errorf("WithCurrency() changed the amount: %v", m)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(EUR(1234.56))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	// Amounts persist as bare numbers; the currency is ledger-wide.
	if string(data) != "1234.56" {
		t.Errorf("Marshal() = %s, want 1234.56", data)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Equal(M(1234.56, "")) {
		t.Errorf("round trip = %v, want 1234.56", back)
	}
}

func TestQuantityOperations(t *testing.T) {
	q := Q(10.5)
	if got := q.Add(Q(0.5)); !got.Equal(Q(11)) {
		t.Errorf("Add() = %v, want 11", got)
	}
	if got := q.Sub(Q(10.5)); !got.IsZero() {
		t.Errorf("Sub() = %v, want 0", got)
	}
	if !Q(-1).IsNegative() || Q(-1).IsPositive() {
		t.Error("sign predicates wrong for -1")
	}
}

func TestPercent(t *testing.T) {
	p := Percent(5)
	if p.Ratio() != 0.05 {
		t.Errorf("Ratio() = %v, want 0.05", p.Ratio())
	}
	if got := p.String(); got != "5.00%" {
		t.Errorf("String() = %q, want 5.00%%", got)
	}
	if got := p.SignedString(); got != "+5.00%" {
		t.Errorf("SignedString() = %q, want +5.00%%", got)
	}
	if got := Percent(-3.5).SignedString(); got != "-3.50%" {
		t.Errorf("SignedString() = %q, want -3.50%%", got)
	}
	if got := Percent(0).SignedString(); got != "-" {
		t.Errorf("SignedString() = %q, want -", got)
	}
	if !Percent(10).Equal(10.00009) {
		t.Error("Equal() too strict")
	}
	if Percent(10).Equal(10.1) {
		t.Error("Equal() too loose")
	}
}
