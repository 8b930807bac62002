package folioval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Ledger is an in-memory snapshot of the append-only transaction log.
//
// Transactions are kept in chronological order regardless of the order they
// were appended or stored in; the sort is stable so same-day transactions
// preserve their storage order.
type Ledger struct {
	currency     string
	transactions []Transaction
	warnings     []string // one entry per malformed transaction skipped
}

// NewLedger creates an empty ledger whose amounts are in the given currency.
func NewLedger(currency string) *Ledger {
	return &Ledger{currency: currency}
}

// Currency returns the ledger's native currency.
func (l *Ledger) Currency() string { return l.currency }

// Append adds transactions, skipping malformed ones with a recorded warning,
// and restores chronological order.
func (l *Ledger) Append(txs ...Transaction) {
	for _, tx := range txs {
		tx = tx.normalize(l.currency)
		if err := tx.Validate(); err != nil {
			warning := fmt.Sprintf("skipping transaction %q: %v", tx.ID, err)
			l.warnings = append(l.warnings, warning)
			log.Printf("ledger: %s", warning)
			continue
		}
		l.transactions = append(l.transactions, tx)
	}
	l.stableSort()
}

// Warnings returns one message per malformed transaction skipped so far.
func (l *Ledger) Warnings() []string { return slices.Clone(l.warnings) }

// Transactions returns the chronologically ordered transactions.
func (l *Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// Len returns the number of valid transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// stableSort sorts by date; same-day transactions keep their relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// FirstDate returns the date of the earliest transaction, or the zero Date
// for an empty ledger.
func (l *Ledger) FirstDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[0].Date
}

// LastDate returns the date of the latest transaction, or the zero Date for
// an empty ledger.
func (l *Ledger) LastDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[len(l.transactions)-1].Date
}

// Instruments returns the distinct non-cash instrument identifiers, sorted.
func (l *Ledger) Instruments() []string {
	visited := make(map[string]struct{})
	for _, tx := range l.transactions {
		if tx.IsCash {
			continue
		}
		visited[tx.Instrument] = struct{}{}
	}
	ids := slices.Collect(maps.Keys(visited))
	slices.Sort(ids)
	return ids
}

// Categories returns the distinct classification labels in use, sorted.
func (l *Ledger) Categories() []string {
	visited := make(map[string]struct{})
	for _, tx := range l.transactions {
		if tx.Category != "" {
			visited[tx.Category] = struct{}{}
		}
	}
	cats := slices.Collect(maps.Keys(visited))
	slices.Sort(cats)
	return cats
}

// CategoryOf returns the classification label last recorded for an
// instrument, or "" when none was ever given.
func (l *Ledger) CategoryOf(instrument string) string {
	category := ""
	for _, tx := range l.transactions {
		if tx.Instrument == instrument && tx.Category != "" {
			category = tx.Category
		}
	}
	return category
}

// DecodeLedger reads transactions from a JSONL stream, one JSON object per
// line. Lines that do not parse are skipped with a recorded warning, in line
// with the replay failure semantics.
func DecodeLedger(r io.Reader, currency string) (*Ledger, error) {
	ledger := NewLedger(currency)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			warning := fmt.Sprintf("skipping line %d: %v", line, err)
			ledger.warnings = append(ledger.warnings, warning)
			log.Printf("ledger: %s", warning)
			continue
		}
		ledger.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeTransaction appends one transaction to a JSONL stream.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction %q: %w", tx.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing transaction %q: %w", tx.ID, err)
	}
	return nil
}

// EncodeLedger writes all transactions as a JSONL stream.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for _, tx := range l.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
