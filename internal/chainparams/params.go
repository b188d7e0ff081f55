// Package chainparams holds the fixed per-network parameters of the
// bitcoin-family chains: peer discovery, address prefixes, HD derivation,
// checkpoints and the difficulty verifier.
package chainparams

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/walletkit-core/internal/consensus"
)

// ErrUnknownNetwork is returned for a network name with no parameters.
var ErrUnknownNetwork = errors.New("unknown network")

// Network names.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// Currency is the currency code the parameters in this package serve.
const Currency = "bch"

// Protocol constants shared by both networks.
const (
	ServicesNodeNetwork = 0x01 // full node serving blocks
	ServicesNodeBCash   = 0x20 // node follows the bitcoin cash fork

	// SigHashForkID is OR'd into the sighash type of every signature.
	SigHashForkID = 0x40

	// PowLimit is the easiest compact target either network accepts.
	PowLimit = 0x1d00ffff
)

// =============================================================================
// Difficulty rule
// =============================================================================

// ASERT anchor: the target, height and parent time of the last block
// before the November 2020 upgrade.
const (
	ASERTRefBits   = 0x1804dafe
	ASERTRefHeight = 661647
	ASERTRefTime   = 1605447844
	ASERTHalfLife  = 2 * 24 * 60 * 60
	TargetSpacing  = 10 * 60
)

// ASERT returns the mainnet aserti3-2d parameters.
func ASERT() consensus.ASERTParams {
	return consensus.ASERTParams{
		RefBits:      ASERTRefBits,
		RefHeight:    ASERTRefHeight,
		RefTime:      ASERTRefTime,
		HalfLife:     ASERTHalfLife,
		IdealSpacing: TargetSpacing,
		MaxBits:      PowLimit,
	}
}

// Prefixes are the leading version bytes of base58 encodings.
type Prefixes struct {
	PubKeyHash byte
	ScriptHash byte
	PrivateKey byte
}

// Params describes one network. Values are shared and must not be
// modified.
type Params struct {
	Name        string
	DNSSeeds    []string
	Port        uint16
	Magic       uint32
	Services    uint64
	Prefixes    Prefixes
	ForkID      byte
	BIP32Path   []uint32 // account path below the master key
	Checkpoints []Checkpoint
	Verifier    consensus.Verifier
}

// =============================================================================
// Pre-defined networks
// =============================================================================

// BIP32Hardened is the offset of hardened child indices.
const BIP32Hardened = 0x80000000

var mainnet = sync.OnceValue(func() *Params {
	return &Params{
		Name: Mainnet,
		DNSSeeds: []string{
			"seed-bch.breadwallet.com.",
			"seed.flowee.cash.",
			"seed-bch.bitcoinforks.org.",
			"btccash-seeder.bitcoinunlimited.info.",
			"seed.bchd.cash.",
			"seed.bch.loping.net.",
			"dnsseed.electroncash.de.",
		},
		Port:        8333,
		Magic:       0xe8f3e1e3,
		Services:    ServicesNodeBCash,
		Prefixes:    Prefixes{PubKeyHash: 0, ScriptHash: 5, PrivateKey: 128},
		ForkID:      SigHashForkID,
		BIP32Path:   []uint32{0 | BIP32Hardened},
		Checkpoints: mustCheckpoints(mainnetCheckpoints),
		Verifier:    consensus.ASERTVerifier{Params: ASERT()},
	}
})

var testnet = sync.OnceValue(func() *Params {
	return &Params{
		Name: Testnet,
		DNSSeeds: []string{
			"testnet-seed-bch.breadwallet.com.",
			"testnet-seed-bch.bitcoinforks.org.",
			"testnet-seed.bchd.cash.",
			"seed.tbch.loping.net.",
		},
		Port:        18333,
		Magic:       0xf4f3e5f4,
		Services:    ServicesNodeBCash,
		Prefixes:    Prefixes{PubKeyHash: 111, ScriptHash: 196, PrivateKey: 239},
		ForkID:      SigHashForkID,
		BIP32Path:   []uint32{0 | BIP32Hardened},
		Checkpoints: mustCheckpoints(testnetCheckpoints),
		// Testnet difficulty is not checked.
		Verifier: consensus.PassThrough{},
	}
})

// MainNet returns the bitcoin cash mainnet parameters.
func MainNet() *Params { return mainnet() }

// TestNet returns the bitcoin cash testnet parameters.
func TestNet() *Params { return testnet() }

// ForNetwork returns the parameters for a network name.
func ForNetwork(name string) (*Params, error) {
	switch name {
	case Mainnet:
		return mainnet(), nil
	case Testnet:
		return testnet(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

// IsMainnet reports whether p describes mainnet.
func (p *Params) IsMainnet() bool { return p.Name == Mainnet }

// DerivationPath returns the full BIP-32 path of an address: the account
// path followed by the chain and index.
func (p *Params) DerivationPath(change, index uint32) []uint32 {
	path := make([]uint32, 0, len(p.BIP32Path)+2)
	path = append(path, p.BIP32Path...)
	return append(path, change, index)
}
