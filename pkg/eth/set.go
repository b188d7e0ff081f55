package eth

import (
	"errors"
	"sort"

	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// ErrNoHash is returned when adding a transaction that has not been
// encoded in signed form.
var ErrNoHash = errors.New("transaction has no hash")

// TransactionSet holds transactions keyed by content hash. The key is
// taken once at insertion. It is not safe for concurrent use.
type TransactionSet struct {
	txs map[types.Hash]*Transaction
}

// NewTransactionSet creates an empty set.
func NewTransactionSet() *TransactionSet {
	return &TransactionSet{txs: make(map[types.Hash]*Transaction)}
}

// Add inserts tx, replacing any transaction with the same hash. It
// reports whether the hash was new.
func (s *TransactionSet) Add(tx *Transaction) (bool, error) {
	h := tx.Hash()
	if h.IsZero() {
		return false, ErrNoHash
	}
	_, exists := s.txs[h]
	s.txs[h] = tx
	return !exists, nil
}

// Get returns the transaction with hash h.
func (s *TransactionSet) Get(h types.Hash) (*Transaction, bool) {
	tx, ok := s.txs[h]
	return tx, ok
}

// Remove deletes the transaction with hash h.
func (s *TransactionSet) Remove(h types.Hash) {
	delete(s.txs, h)
}

// Len returns the number of transactions.
func (s *TransactionSet) Len() int {
	return len(s.txs)
}

// Sorted returns the transactions ordered by Compare.
func (s *TransactionSet) Sorted() []*Transaction {
	out := make([]*Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := Compare(out[i], out[j]); c != types.EQ {
			return c == types.LT
		}
		hi, hj := out[i].Hash(), out[j].Hash()
		return string(hi[:]) < string(hj[:])
	})
	return out
}
