package manager

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/internal/wallet"
	"github.com/Klingon-tech/walletkit-core/pkg/tezos"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// TezosTransferRecord is the file service type of Tezos transfers.
var TezosTransferRecord = fileservice.RecordType{Name: "transfer", Version: 1}

// TezosTransfer is a transfer or delegation tracked by a TezosWallet.
type TezosTransfer struct {
	Tx        *tezos.Transaction
	Hash      types.Hash // zero until signed or recovered
	Direction Direction
	State     TransferState
	Reason    string // set when errored
	raw       []byte // signed bytes, nil for recovered transfers
}

// Target returns the transfer destination or the delegate.
func (t *TezosTransfer) Target() tezos.Address {
	switch op := t.Tx.Operation.(type) {
	case tezos.Transfer:
		return op.Destination
	case tezos.Delegation:
		return op.Delegate
	}
	return tezos.Address{}
}

// Amount returns the mutez moved, zero for a delegation.
func (t *TezosTransfer) Amount() uint64 {
	if op, ok := t.Tx.Operation.(tezos.Transfer); ok {
		return op.Amount
	}
	return 0
}

// SignedHex returns the signed operation bytes as injected through RPC.
func (t *TezosTransfer) SignedHex() (string, error) {
	if t.raw == nil {
		return "", ErrNotSigned
	}
	return hex.EncodeToString(t.raw), nil
}

// TezosOperation is an operation involving the wallet as reported by an
// indexer or node.
type TezosOperation struct {
	Hash     types.Hash
	Source   tezos.Address
	Target   tezos.Address
	Amount   uint64
	Fee      uint64
	Kind     tezos.OperationKind
	Included bool
	Failed   bool
	Reason   string
}

// TezosWallet builds, signs and tracks the operations of one tz1
// account. It is safe for concurrent use.
type TezosWallet struct {
	mu           sync.Mutex
	account      tezos.Account
	index        uint32
	mutezPerByte uint64
	files        fileservice.Service
	transfers    map[types.Hash]*TezosTransfer
	logger       zerolog.Logger
}

// TezosConfig selects the account and fee rate of a TezosWallet.
type TezosConfig struct {
	Network      string
	AccountIndex uint32 // hardened index in m/44'/1729'/index'/0'
	MutezPerByte uint64
}

// NewTezosWallet creates a wallet for acct and restores the transfers
// stored in files. acct must be the account derived at cfg.AccountIndex.
func NewTezosWallet(acct tezos.Account, cfg TezosConfig, files fileservice.Service) (*TezosWallet, error) {
	if files == nil {
		files = fileservice.NOP{}
	}
	if cfg.Network == "" {
		cfg.Network = "mainnet"
	}
	w := &TezosWallet{
		account:      acct,
		index:        cfg.AccountIndex,
		mutezPerByte: cfg.MutezPerByte,
		files:        files,
		transfers:    make(map[types.Hash]*TezosTransfer),
		logger:       log.WithNetwork(log.Manager, "xtz", cfg.Network),
	}
	done := log.Timed(w.logger, "restore transfers")
	err := files.ForEach(TezosTransferRecord, func(key string, data []byte) error {
		t, err := decodeTezosTransfer(data)
		if err != nil {
			w.logger.Warn().Str("key", key).Err(err).Msg("Skipping unreadable transfer record")
			return nil
		}
		w.transfers[t.Hash] = t
		return nil
	})
	done()
	if err != nil {
		return nil, fmt.Errorf("restore transfers: %w", err)
	}
	w.logger.Info().Int("transfers", len(w.transfers)).Str("address", acct.Address.String()).Msg("Tezos wallet loaded")
	return w, nil
}

// Account returns the wallet's account.
func (w *TezosWallet) Account() tezos.Account {
	return w.account
}

// NeedsReveal reports whether the next outgoing operation must carry a
// reveal. The key counts as revealed once any outgoing transfer exists
// that has not errored.
func (w *TezosWallet) NeedsReveal() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.needsReveal()
}

func (w *TezosWallet) needsReveal() bool {
	for _, t := range w.transfers {
		if t.Direction == DirectionReceived {
			continue
		}
		if t.State != StateErrored && t.State != StateDeleted {
			return false
		}
	}
	return true
}

// CreateTransfer builds an unsigned transfer of amount mutez to target.
func (w *TezosWallet) CreateTransfer(target tezos.Address, amount uint64, fb tezos.FeeBasis) (*TezosTransfer, error) {
	tx, err := tezos.NewTransfer(w.account.Address, target, amount, fb)
	if err != nil {
		return nil, err
	}
	return w.created(tx), nil
}

// CreateDelegation builds an unsigned delegation to delegate. The zero
// address withdraws the current delegation.
func (w *TezosWallet) CreateDelegation(delegate tezos.Address, fb tezos.FeeBasis) (*TezosTransfer, error) {
	tx, err := tezos.NewDelegation(w.account.Address, delegate, fb)
	if err != nil {
		return nil, err
	}
	return w.created(tx), nil
}

func (w *TezosWallet) created(tx *tezos.Transaction) *TezosTransfer {
	dir := DirectionSent
	if op, ok := tx.Operation.(tezos.Transfer); ok && op.Destination == w.account.Address {
		dir = DirectionRecovered
	}
	return &TezosTransfer{Tx: tx, Direction: dir, State: StateCreated}
}

// EstimationPayload forges t with default limits and a blank signature,
// ready for a node simulation.
func (w *TezosWallet) EstimationPayload(t *TezosTransfer, branch tezos.BlockHash) []byte {
	t.Tx.FeeBasis = tezos.DefaultFeeBasis(w.mutezPerByte)
	return t.Tx.SerializeForFeeEstimation(branch, w.account.PublicKey, w.revealFor(t))
}

// RecoverFeeBasis replaces the fee basis of t with one built from a
// simulation result and returns the resulting fee. counter is the
// account's current counter.
func (w *TezosWallet) RecoverFeeBasis(t *TezosTransfer, consumedGas, storageSize, counter uint64) uint64 {
	t.Tx.FeeBasis = tezos.EstimateFeeBasis(w.mutezPerByte, 0, consumedGas, storageSize, counter)
	// Forging records the payload size on the fee basis.
	t.Tx.SerializeForFeeEstimation(tezos.BlockHash{}, w.account.PublicKey, w.revealFor(t))
	return t.Tx.Fee()
}

// revealFor applies the reveal rule to transfers only. Delegations are
// forged without a reveal.
func (w *TezosWallet) revealFor(t *TezosTransfer) bool {
	if t.Tx.Operation.Kind() != tezos.KindTransaction {
		return false
	}
	return w.NeedsReveal()
}

// Sign forges and signs t against branch with the key derived from seed,
// then stores it.
func (w *TezosWallet) Sign(t *TezosTransfer, branch tezos.BlockHash, seed []byte) error {
	node, err := wallet.TezosKey(seed, w.index)
	if err != nil {
		return err
	}
	defer node.Zero()
	key, err := node.Signer()
	if err != nil {
		return err
	}
	defer key.Zero()
	if key.PublicKey() != w.account.PublicKey {
		return ErrKeyMismatch
	}

	size := t.Tx.SerializeAndSign(branch, key, w.revealFor(t))
	so, err := t.Tx.Signed()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	signed := *t
	signed.Hash = so.Hash
	signed.raw = so.Bytes
	signed.State = StateSigned
	if err := w.save(&signed); err != nil {
		return err
	}
	*t = signed
	w.transfers[t.Hash] = t
	log.Transaction.Info().
		Str("hash", so.HashString()).
		Str("kind", t.Tx.Operation.Kind().String()).
		Uint64("fee", t.Tx.Fee()).
		Int("size", size).
		Msg("Signed tezos operation")
	return nil
}

// SetState moves the transfer with hash h to state s. reason is kept for
// StateErrored.
func (w *TezosWallet) SetState(h types.Hash, s TransferState, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.transfers[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTransfer, tezos.OperationHashString(h))
	}
	t.State = s
	if s == StateErrored {
		t.Reason = reason
	}
	return w.save(t)
}

// RecoverTransfer merges an operation reported by the network. A known
// operation takes the reported state and actual fee. An unknown one is
// added when it involves the wallet. It reports whether a transfer was
// added.
func (w *TezosWallet) RecoverTransfer(op TezosOperation) (bool, error) {
	own := w.account.Address
	w.mu.Lock()
	defer w.mu.Unlock()

	state := StateSubmitted
	switch {
	case op.Failed:
		state = StateErrored
	case op.Included:
		state = StateIncluded
	}

	if t, ok := w.transfers[op.Hash]; ok && t.Target() == op.Target {
		t.State = state
		t.Reason = op.Reason
		if op.Included || op.Failed {
			t.Tx.FeeBasis = tezos.ActualFeeBasis(op.Fee)
		}
		return false, w.save(t)
	}

	var dir Direction
	switch {
	case op.Source == own && op.Target == own:
		dir = DirectionRecovered
	case op.Source == own:
		dir = DirectionSent
	case op.Target == own:
		dir = DirectionReceived
	default:
		return false, ErrNotOwnTransfer
	}
	t := &TezosTransfer{
		Tx:        &tezos.Transaction{Source: op.Source, FeeBasis: tezos.ActualFeeBasis(op.Fee)},
		Hash:      op.Hash,
		Direction: dir,
		State:     state,
		Reason:    op.Reason,
	}
	if op.Kind == tezos.KindDelegation {
		t.Tx.Operation = tezos.Delegation{Delegate: op.Target}
	} else {
		t.Tx.Operation = tezos.Transfer{Amount: op.Amount, Destination: op.Target}
	}
	w.transfers[t.Hash] = t
	return true, w.save(t)
}

// Transfer returns the transfer with hash h.
func (w *TezosWallet) Transfer(h types.Hash) (*TezosTransfer, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.transfers[h]
	return t, ok
}

// Transfers returns the tracked transfers ordered by hash.
func (w *TezosWallet) Transfers() []*TezosTransfer {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*TezosTransfer, 0, len(w.transfers))
	for _, t := range w.transfers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hash.String() < out[j].Hash.String()
	})
	return out
}

// Balance returns the mutez implied by included transfers. ok is false
// if sends exceed receipts.
func (w *TezosWallet) Balance() (balance uint64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var in, out uint64
	for _, t := range w.transfers {
		switch t.State {
		case StateIncluded:
			if t.Direction == DirectionReceived {
				in += t.Amount()
				continue
			}
			out += t.Tx.Fee()
			if t.Direction == DirectionSent {
				out += t.Amount()
			}
		case StateErrored:
			if t.Direction != DirectionReceived {
				out += t.Tx.Fee()
			}
		}
	}
	if out > in {
		return 0, false
	}
	return in - out, true
}

// tezosRecord is the stored form of a TezosTransfer.
type tezosRecord struct {
	Hash      string         `json:"hash"`
	Kind      string         `json:"kind"`
	Source    string         `json:"source"`
	Target    string         `json:"target,omitempty"`
	Amount    uint64         `json:"amount,omitempty"`
	FeeBasis  tezos.FeeBasis `json:"fee_basis"`
	Direction Direction      `json:"direction"`
	State     TransferState  `json:"state"`
	Reason    string         `json:"reason,omitempty"`
	Signed    string         `json:"signed,omitempty"`
}

// save stores t. The caller holds w.mu.
func (w *TezosWallet) save(t *TezosTransfer) error {
	rec := tezosRecord{
		Hash:      tezos.OperationHashString(t.Hash),
		Kind:      t.Tx.Operation.Kind().String(),
		Source:    t.Tx.Source.String(),
		Target:    t.Target().String(),
		Amount:    t.Amount(),
		FeeBasis:  t.Tx.FeeBasis,
		Direction: t.Direction,
		State:     t.State,
		Reason:    t.Reason,
	}
	if t.raw != nil {
		rec.Signed = hex.EncodeToString(t.raw)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := w.files.Put(TezosTransferRecord, rec.Hash, data); err != nil {
		w.logger.Error().Err(err).Str("hash", rec.Hash).Msg("Failed to save transfer")
		return fmt.Errorf("save transfer: %w", err)
	}
	return nil
}

func decodeTezosTransfer(data []byte) (*TezosTransfer, error) {
	var rec tezosRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	hash, err := tezos.ParseOperationHash(rec.Hash)
	if err != nil {
		return nil, err
	}
	source, err := tezos.ParseAddress(rec.Source)
	if err != nil {
		return nil, err
	}
	var target tezos.Address
	if rec.Target != "" {
		if target, err = tezos.ParseAddress(rec.Target); err != nil {
			return nil, err
		}
	}
	t := &TezosTransfer{
		Tx:        &tezos.Transaction{Source: source, FeeBasis: rec.FeeBasis},
		Hash:      hash,
		Direction: rec.Direction,
		State:     rec.State,
		Reason:    rec.Reason,
	}
	switch rec.Kind {
	case tezos.KindTransaction.String():
		t.Tx.Operation = tezos.Transfer{Amount: rec.Amount, Destination: target}
	case tezos.KindDelegation.String():
		t.Tx.Operation = tezos.Delegation{Delegate: target}
	default:
		return nil, fmt.Errorf("unknown operation kind %q", rec.Kind)
	}
	if rec.Signed != "" {
		if t.raw, err = hex.DecodeString(rec.Signed); err != nil {
			return nil, err
		}
	}
	return t, nil
}
