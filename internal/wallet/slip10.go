package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/tezos"
	"github.com/tyler-smith/go-bip32"
)

// CoinTypeTezos is the SLIP-44 coin type of tezos (hardened).
const CoinTypeTezos = bip32.FirstHardenedChild + 1729

// ErrNotHardened is returned for a non-hardened ed25519 child index.
var ErrNotHardened = errors.New("ed25519 derivation supports hardened indices only")

var ed25519Curve = []byte("ed25519 seed")

// Ed25519HDKey is a SLIP-10 ed25519 node.
type Ed25519HDKey struct {
	key       [32]byte
	chainCode [32]byte
	depth     uint8
}

// NewEd25519MasterKey derives the SLIP-10 ed25519 master node of seed.
func NewEd25519MasterKey(seed []byte) (*Ed25519HDKey, error) {
	if len(seed) < 16 || len(seed) > SeedSize {
		return nil, fmt.Errorf("seed must be 16 to %d bytes, got %d", SeedSize, len(seed))
	}
	return splitNode(hmacSHA512(ed25519Curve, seed), 0), nil
}

// DeriveChild derives the hardened child at index, which must carry the
// hardened bit.
func (k *Ed25519HDKey) DeriveChild(index uint32) (*Ed25519HDKey, error) {
	if index < bip32.FirstHardenedChild {
		return nil, fmt.Errorf("%w: %d", ErrNotHardened, index)
	}
	data := make([]byte, 0, 37)
	data = append(data, 0)
	data = append(data, k.key[:]...)
	data = binary.BigEndian.AppendUint32(data, index)
	return splitNode(hmacSHA512(k.chainCode[:], data), k.depth+1), nil
}

// DerivePath derives a key along a sequence of hardened indices.
func (k *Ed25519HDKey) DerivePath(indices ...uint32) (*Ed25519HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// PrivateKeyBytes returns the 32-byte ed25519 secret.
func (k *Ed25519HDKey) PrivateKeyBytes() []byte {
	out := k.key
	return out[:]
}

// ChainCode returns the node's chain code.
func (k *Ed25519HDKey) ChainCode() []byte {
	out := k.chainCode
	return out[:]
}

// Depth returns the derivation depth (0 for master).
func (k *Ed25519HDKey) Depth() uint8 {
	return k.depth
}

// Signer expands the node secret into an ed25519 key pair.
func (k *Ed25519HDKey) Signer() (*crypto.Ed25519Key, error) {
	return crypto.Ed25519FromSeed(k.key[:])
}

// Zero wipes the secret and chain code.
func (k *Ed25519HDKey) Zero() {
	k.key = [32]byte{}
	k.chainCode = [32]byte{}
}

// TezosKey derives the tezos key m/44'/1729'/account'/0' from a seed.
func TezosKey(seed []byte, account uint32) (*Ed25519HDKey, error) {
	master, err := NewEd25519MasterKey(seed)
	if err != nil {
		return nil, err
	}
	return master.DerivePath(
		PurposeBIP44,
		CoinTypeTezos,
		bip32.FirstHardenedChild+account,
		bip32.FirstHardenedChild,
	)
}

// TezosAccount derives the tz1 account for account index from a seed.
func TezosAccount(seed []byte, account uint32) (tezos.Account, error) {
	node, err := TezosKey(seed, account)
	if err != nil {
		return tezos.Account{}, err
	}
	defer node.Zero()
	key, err := node.Signer()
	if err != nil {
		return tezos.Account{}, err
	}
	defer key.Zero()
	return tezos.NewAccount(key.PublicKey()), nil
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func splitNode(i []byte, depth uint8) *Ed25519HDKey {
	k := &Ed25519HDKey{depth: depth}
	copy(k.key[:], i[:32])
	copy(k.chainCode[:], i[32:])
	return k
}
