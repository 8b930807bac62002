package folioval

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
)

// ErrTransactionNotFound is returned when removing an unknown transaction id.
var ErrTransactionNotFound = errors.New("transaction not found")

// Store is the CRUD contract the engine consumes the ledger through. The
// backing technology is out of scope; transactions may come back in any
// order, the replayer sorts internally.
type Store interface {
	ListTransactions() ([]Transaction, error)
	AppendTransaction(Transaction) error
	RemoveTransaction(id string) error
}

// MemoryStore is an in-memory Store, used in tests and as a default.
type MemoryStore struct {
	mu  sync.Mutex
	txs []Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(txs ...Transaction) *MemoryStore {
	return &MemoryStore{txs: slices.Clone(txs)}
}

func (s *MemoryStore) ListTransactions() ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), nil
}

func (s *MemoryStore) AppendTransaction(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

func (s *MemoryStore) RemoveTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs = slices.Delete(s.txs, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrTransactionNotFound, id)
}

// FileStore persists the ledger as a JSONL file, one transaction per line.
type FileStore struct {
	mu       sync.Mutex
	path     string
	currency string
}

// NewFileStore creates a store backed by the given JSONL file. The file is
// created on first append.
func NewFileStore(path, currency string) *FileStore {
	return &FileStore{path: path, currency: currency}
}

func (s *FileStore) ListTransactions() ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger file %q: %w", s.path, err)
	}
	defer f.Close()
	ledger, err := DecodeLedger(f, s.currency)
	if err != nil {
		return nil, err
	}
	return ledger.Transactions(), nil
}

func (s *FileStore) AppendTransaction(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ledger file %q: %w", s.path, err)
	}
	defer f.Close()
	return EncodeTransaction(f, tx)
}

// RemoveTransaction rewrites the file without the given transaction.
func (s *FileStore) RemoveTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening ledger file %q: %w", s.path, err)
	}
	ledger, err := DecodeLedger(f, s.currency)
	f.Close()
	if err != nil {
		return err
	}
	kept := NewLedger(s.currency)
	found := false
	for _, tx := range ledger.Transactions() {
		if tx.ID == id {
			found = true
			continue
		}
		kept.Append(tx)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrTransactionNotFound, id)
	}
	tmp := s.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %q: %w", tmp, err)
	}
	if err := EncodeLedger(out, kept); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
