package manager

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/walletkit-core/internal/account"
	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/pkg/eth"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// EthTransactionRecord is the file service type of archived transactions.
var EthTransactionRecord = fileservice.RecordType{Name: "transaction", Version: 1}

// EthereumWallet builds, signs and archives ether and token transfers
// from an account's primary address. It is safe for concurrent use.
type EthereumWallet struct {
	mu       sync.Mutex
	account  *account.Account
	network  eth.Network
	files    fileservice.Service
	txs      *eth.TransactionSet
	gasPrice uint256.UInt256
	gasLimit uint64
	logger   zerolog.Logger
}

// EthereumConfig holds the defaults used for new transfers.
type EthereumConfig struct {
	Network  eth.Network
	GasPrice uint256.UInt256 // wei
	GasLimit uint64          // zero selects eth.DefaultGasLimit
}

// NewEthereumWallet creates a wallet for acct and restores the
// transactions archived in files. Restored transactions sent from the
// primary address move its nonce past theirs.
func NewEthereumWallet(acct *account.Account, cfg EthereumConfig, files fileservice.Service) (*EthereumWallet, error) {
	if acct == nil {
		return nil, fmt.Errorf("account is nil")
	}
	if files == nil {
		files = fileservice.NOP{}
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = eth.DefaultGasLimit
	}
	w := &EthereumWallet{
		account:  acct,
		network:  cfg.Network,
		files:    files,
		txs:      eth.NewTransactionSet(),
		gasPrice: cfg.GasPrice,
		gasLimit: cfg.GasLimit,
		logger:   log.WithNetwork(log.Manager, "eth", cfg.Network.Name),
	}
	if err := w.restore(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *EthereumWallet) restore() error {
	defer log.Timed(w.logger, "restore transactions")()
	primary := w.account.PrimaryAddress()
	err := w.files.ForEach(EthTransactionRecord, func(key string, data []byte) error {
		tx, err := eth.DecodeTransaction(data, w.network, eth.FormArchive)
		if err != nil {
			w.logger.Warn().Str("key", key).Err(err).Msg("Skipping unreadable transaction record")
			return nil
		}
		if _, err := w.txs.Add(tx); err != nil {
			return err
		}
		if tx.Source() == primary {
			if _, err := w.account.SetNonce(primary, tx.Nonce+1, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore transactions: %w", err)
	}
	w.logger.Info().Int("transactions", w.txs.Len()).Str("address", primary.ChecksumString()).Msg("Ethereum wallet loaded")
	return nil
}

// Address returns the primary address.
func (w *EthereumWallet) Address() types.Address {
	return w.account.PrimaryAddress()
}

// Network returns the wallet's network.
func (w *EthereumWallet) Network() eth.Network {
	return w.network
}

// CreateTransfer builds an unsigned ether transfer at the default gas
// price. gasLimit is an estimate; zero selects the wallet default. The
// nonce is assigned when the transfer is signed.
func (w *EthereumWallet) CreateTransfer(target types.Address, amount uint256.UInt256, gasLimit uint64) *eth.Transaction {
	if gasLimit == 0 {
		gasLimit = w.gasLimit
	}
	return eth.NewTransaction(w.Address(), target, amount, w.gasPrice, eth.ApplyGasLimitMargin(gasLimit), nil, 0)
}

// CreateTokenTransfer builds an unsigned ERC-20 transfer call to contract.
func (w *EthereumWallet) CreateTokenTransfer(contract, target types.Address, amount uint256.UInt256, gasLimit uint64) *eth.Transaction {
	if gasLimit == 0 {
		gasLimit = w.gasLimit
	}
	return eth.NewTokenTransfer(w.Address(), contract, target, amount, w.gasPrice, eth.ApplyGasLimitMargin(gasLimit), 0)
}

// Sign assigns the primary address's next nonce to tx, signs it with the
// key derived from seed and archives it. The nonce advances only once the
// transaction is saved, so a failed Sign leaves no gap.
func (w *EthereumWallet) Sign(tx *eth.Transaction, seed []byte) error {
	primary := w.Address()
	if tx.Source() != primary {
		return fmt.Errorf("%w: source %s", ErrNotOwnTransfer, tx.Source())
	}
	key, err := w.account.PrivateKey(primary, seed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	}
	defer key.Zero()

	w.mu.Lock()
	defer w.mu.Unlock()
	nonce, err := w.account.Nonce(primary)
	if err != nil {
		return err
	}
	tx.Nonce = nonce
	if err := tx.SignWith(w.network, key); err != nil {
		return err
	}
	added, err := w.txs.Add(tx)
	if err != nil {
		return err
	}
	if err := w.save(tx); err != nil {
		if added {
			w.txs.Remove(tx.Hash())
		}
		return err
	}
	if _, err := w.account.SetNonce(primary, nonce+1, false); err != nil {
		return err
	}
	log.Transaction.Info().Str("network", w.network.Name).Msg("Signed " + tx.Summary())
	return nil
}

// save archives tx. The caller holds w.mu.
func (w *EthereumWallet) save(tx *eth.Transaction) error {
	if err := w.files.Put(EthTransactionRecord, tx.Hash().String(), tx.Encode(w.network, eth.FormArchive)); err != nil {
		w.logger.Error().Err(err).Str("hash", tx.Hash().Hex()).Msg("Failed to save transaction")
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

// AddTransaction records a signed transaction seen on the network. It
// reports whether the transaction was new.
func (w *EthereumWallet) AddTransaction(tx *eth.Transaction) (bool, error) {
	primary := w.Address()
	if tx.Source() != primary && tx.Target != primary {
		return false, ErrNotOwnTransfer
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.txs.Get(tx.Hash()); ok {
		if tx.Status().Kind() == eth.StatusUnknown {
			return false, nil
		}
		if err := existing.SetStatus(tx.Status()); err != nil {
			return false, err
		}
		return false, w.save(existing)
	}
	if _, err := w.txs.Add(tx); err != nil {
		return false, err
	}
	if tx.Source() == primary {
		if _, err := w.account.SetNonce(primary, tx.Nonce+1, false); err != nil {
			return false, err
		}
	}
	return true, w.save(tx)
}

// UpdateStatus moves the transaction with hash h to status s and archives
// the change.
func (w *EthereumWallet) UpdateStatus(h types.Hash, s eth.Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	tx, ok := w.txs.Get(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTransfer, h.Hex())
	}
	if err := tx.SetStatus(s); err != nil {
		return err
	}
	log.Transaction.Debug().Str("hash", h.Hex()).Stringer("status", s.Kind()).Msg("Status updated")
	return w.save(tx)
}

// AnnounceNonce reports the network's next nonce for addr. A nonce ahead
// of the local one replaces it.
func (w *EthereumWallet) AnnounceNonce(addr types.Address, nonce uint64) (bool, error) {
	return w.account.SetNonce(addr, nonce, false)
}

// Transaction returns the transaction with hash h.
func (w *EthereumWallet) Transaction(h types.Hash) (*eth.Transaction, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.txs.Get(h)
}

// Transactions returns all transactions ordered by inclusion, then nonce.
func (w *EthereumWallet) Transactions() []*eth.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.txs.Sorted()
}

// Balance returns the ether balance implied by the wallet's transactions:
// included receipts minus included sends. Errored sends still pay their fee.
// ok is false if the sum underflows or overflows.
func (w *EthereumWallet) Balance() (balance uint256.UInt256, ok bool) {
	primary := w.Address()
	w.mu.Lock()
	defer w.mu.Unlock()

	var received, sent uint256.UInt256
	for _, tx := range w.txs.Sorted() {
		var overflow bool
		if tx.Target == primary && tx.IsIncluded() {
			if received, overflow = uint256.AddOverflow(received, tx.Amount); overflow {
				return uint256.Zero, false
			}
		}
		if tx.Source() != primary || !tx.IsIncluded() && !tx.IsErrored() {
			continue
		}
		cost, over := tx.Fee()
		if !tx.IsErrored() {
			cost, over = tx.Total()
		}
		if over {
			return uint256.Zero, false
		}
		if sent, overflow = uint256.AddOverflow(sent, cost); overflow {
			return uint256.Zero, false
		}
	}
	balance, underflow := uint256.Sub(received, sent)
	return balance, !underflow
}
