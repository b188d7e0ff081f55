// Package account tracks the addresses, public keys and nonces of one
// ethereum account derived along m/44'/60'/0'/0/index.
package account

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/internal/wallet"
	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/eth"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/rs/zerolog"
	"github.com/tyler-smith/go-bip32"
)

// PrimaryIndex is the derivation index of the primary address.
const PrimaryIndex = 0

// Account errors.
var (
	ErrUnknownAddress = errors.New("address not in account")
	ErrNoDerivation   = errors.New("account cannot derive further addresses")
	ErrNoPublicKey    = errors.New("watch-only address has no public key")
	ErrKeyMismatch    = errors.New("seed does not derive this account")
	ErrPublicKey      = errors.New("invalid public key")
)

// Kind tells what key material an account was created from.
type Kind uint8

const (
	// KindSeed accounts hold the account-level extended public key of a
	// seed and derive any index.
	KindSeed Kind = iota + 1
	// KindExtendedKey accounts were given an account-level xpub.
	KindExtendedKey
	// KindPublicKey accounts hold a single public key at index 0.
	KindPublicKey
	// KindWatchOnly accounts hold a bare address.
	KindWatchOnly
)

func (k Kind) String() string {
	switch k {
	case KindSeed:
		return "seed"
	case KindExtendedKey:
		return "xpub"
	case KindPublicKey:
		return "pubkey"
	case KindWatchOnly:
		return "watch-only"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// AddressDetail is one derived address and its next nonce.
type AddressDetail struct {
	Address types.Address
	// PublicKey is the uncompressed key without its 0x04 tag; zero for a
	// watch-only address.
	PublicKey [crypto.RawPublicKeySize]byte
	Index     uint32
	Nonce     uint64
	hasKey    bool
}

// HasPublicKey reports whether the detail carries a public key.
func (d AddressDetail) HasPublicKey() bool { return d.hasKey }

// UncompressedPublicKey returns the 65-byte key with its tag restored.
func (d AddressDetail) UncompressedPublicKey() ([]byte, error) {
	if !d.hasKey {
		return nil, ErrNoPublicKey
	}
	out := make([]byte, 0, crypto.UncompressedPublicKeySize)
	out = append(out, 0x04)
	return append(out, d.PublicKey[:]...), nil
}

// Account owns the derived addresses of one key. It never holds private
// key material; signing takes the seed per call. An Account is safe for
// concurrent use.
type Account struct {
	kind   Kind
	acct   *wallet.HDKey // m/44'/60'/0', public only
	xpub   *wallet.HDKey // external chain m/44'/60'/0'/0, public only
	logger zerolog.Logger

	mu      sync.Mutex
	primary *AddressDetail
	byAddr  map[types.Address]*AddressDetail
	byIndex map[uint32]*AddressDetail
}

func newAccount(kind Kind, acct, xpub *wallet.HDKey, primary *AddressDetail) *Account {
	a := &Account{
		kind:    kind,
		acct:    acct,
		xpub:    xpub,
		primary: primary,
		byAddr:  map[types.Address]*AddressDetail{primary.Address: primary},
		byIndex: map[uint32]*AddressDetail{primary.Index: primary},
	}
	a.logger = log.Account.With().Str("address", primary.Address.String()).Logger()
	a.logger.Info().Str("kind", kind.String()).Msg("Account created")
	return a
}

// NewFromSeed creates an account from a 64-byte BIP-39 seed. Only the
// account-level public key is retained.
func NewFromSeed(seed []byte) (*Account, error) {
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	acct, err := master.DerivePath(wallet.PurposeBIP44, wallet.CoinTypeEthereum, bip32.FirstHardenedChild)
	if err != nil {
		return nil, err
	}
	return fromAccountKey(KindSeed, acct.Neuter())
}

// NewFromMnemonic validates mnemonic against wl and creates the account
// of its seed.
func NewFromMnemonic(wl *wallet.WordList, mnemonic, passphrase string) (*Account, error) {
	seed, err := wallet.SeedFromMnemonic(wl, mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewFromSeed(seed)
}

// NewFromExtendedKey creates a watch-only account from the base58
// extended public key of m/44'/60'/0'.
func NewFromExtendedKey(xpub string) (*Account, error) {
	key, err := wallet.ParseExtendedKey(xpub)
	if err != nil {
		return nil, err
	}
	return fromAccountKey(KindExtendedKey, key.Neuter())
}

func fromAccountKey(kind Kind, acct *wallet.HDKey) (*Account, error) {
	external, err := acct.DeriveChild(wallet.ChangeExternal)
	if err != nil {
		return nil, err
	}
	d, err := deriveDetail(external, PrimaryIndex)
	if err != nil {
		return nil, err
	}
	return newAccount(kind, acct, external, d), nil
}

// NewFromPublicKey creates a watch-only account whose primary address is
// the address of pub (33-byte compressed or 65-byte uncompressed).
func NewFromPublicKey(pub []byte) (*Account, error) {
	if len(pub) != crypto.CompressedPublicKeySize && len(pub) != crypto.UncompressedPublicKeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPublicKey, len(pub))
	}
	full, err := crypto.DecompressPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublicKey, err)
	}
	return newAccount(KindPublicKey, nil, nil, detailFromKey(full, PrimaryIndex)), nil
}

// NewWatchOnly creates an account that only observes addr. It can track
// nonces but never sign.
func NewWatchOnly(addr types.Address) *Account {
	return newAccount(KindWatchOnly, nil, nil, &AddressDetail{Address: addr, Index: PrimaryIndex})
}

func deriveDetail(external *wallet.HDKey, index uint32) (*AddressDetail, error) {
	child, err := external.DeriveChild(index)
	if err != nil {
		return nil, err
	}
	pub, err := child.UncompressedPublicKey()
	if err != nil {
		return nil, err
	}
	return detailFromKey(pub, index), nil
}

func detailFromKey(pub []byte, index uint32) *AddressDetail {
	d := &AddressDetail{Address: crypto.AddressFromPublicKey(pub), Index: index, hasKey: true}
	copy(d.PublicKey[:], pub[1:])
	return d
}

// Kind returns the kind of key material behind the account.
func (a *Account) Kind() Kind { return a.kind }

// CanDerive reports whether Address accepts indices other than 0.
func (a *Account) CanDerive() bool { return a.xpub != nil }

// PrimaryAddress returns the index-0 address.
func (a *Account) PrimaryAddress() types.Address { return a.primary.Address }

// Primary returns a snapshot of the primary address detail.
func (a *Account) Primary() AddressDetail {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.primary
}

// ExtendedPublicKey returns the xpub of m/44'/60'/0', or "" when the
// account cannot derive.
func (a *Account) ExtendedPublicKey() string {
	if a.acct == nil {
		return ""
	}
	return a.acct.String()
}

// CompressedPublicKeyHex returns the 0x-prefixed compressed primary key.
func (a *Account) CompressedPublicKeyHex() (string, error) {
	pub, err := a.primary.UncompressedPublicKey()
	if err != nil {
		return "", err
	}
	c, err := crypto.CompressPublicKey(pub)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(c), nil
}

// Address returns the address at index, deriving and recording it on
// first use.
func (a *Account) Address(index uint32) (types.Address, error) {
	d, err := a.detail(index)
	if err != nil {
		return types.Address{}, err
	}
	return d.Address, nil
}

// Detail returns a snapshot of the detail at index.
func (a *Account) Detail(index uint32) (AddressDetail, error) {
	d, err := a.detail(index)
	if err != nil {
		return AddressDetail{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return *d, nil
}

func (a *Account) detail(index uint32) (*AddressDetail, error) {
	a.mu.Lock()
	d, ok := a.byIndex[index]
	a.mu.Unlock()
	if ok {
		return d, nil
	}
	if a.xpub == nil {
		return nil, fmt.Errorf("%w: index %d", ErrNoDerivation, index)
	}
	if index >= bip32.FirstHardenedChild {
		return nil, fmt.Errorf("%w: hardened index %d", ErrNoDerivation, index)
	}

	nd, err := deriveDetail(a.xpub, index)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.byIndex[index]; ok {
		return d, nil
	}
	a.byIndex[index] = nd
	a.byAddr[nd.Address] = nd
	return nd, nil
}

// HasAddress reports whether addr has been derived by this account.
func (a *Account) HasAddress(addr types.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.byAddr[addr]
	return ok
}

// Nonce returns the next unused nonce of addr without advancing it.
func (a *Account) Nonce(addr types.Address) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.byAddr[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	return d.Nonce, nil
}

// ConsumeNonce returns the next unused nonce of addr and advances it.
// Concurrent callers always receive distinct values.
func (a *Account) ConsumeNonce(addr types.Address) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.byAddr[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	n := d.Nonce
	d.Nonce++
	a.logger.Debug().Uint64("nonce", n).Msg("Nonce consumed")
	return n, nil
}

// SetNonce moves the nonce of addr to nonce when it is ahead of the
// current value, or unconditionally when force is set. It reports
// whether the stored nonce changed.
func (a *Account) SetNonce(addr types.Address, nonce uint64, force bool) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.byAddr[addr]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	if !force && nonce <= d.Nonce {
		return false, nil
	}
	changed := d.Nonce != nonce
	d.Nonce = nonce
	if changed {
		a.logger.Debug().Uint64("nonce", nonce).Bool("force", force).Msg("Nonce set")
	}
	return changed, nil
}

// PrivateKey derives the signing key of addr from seed. The caller owns
// the key and should Zero it when done.
func (a *Account) PrivateKey(addr types.Address, seed []byte) (*crypto.PrivateKey, error) {
	a.mu.Lock()
	d, ok := a.byAddr[addr]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}

	hd, err := wallet.EthereumKey(seed, d.Index)
	if err != nil {
		return nil, err
	}
	got, err := hd.EthereumAddress()
	if err != nil {
		return nil, err
	}
	if got != addr {
		return nil, fmt.Errorf("%w: derived %s, want %s", ErrKeyMismatch, got, addr)
	}
	return hd.Signer()
}

// Sign signs keccak256(data) with the key of addr derived from seed. No
// key material outlives the call.
func (a *Account) Sign(data []byte, addr types.Address, seed []byte, kind eth.SignatureKind) (eth.Signature, error) {
	key, err := a.PrivateKey(addr, seed)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return eth.Sign(key, crypto.Keccak256(data), kind)
}
