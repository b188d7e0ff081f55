package chainparams

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
)

// Address errors.
var (
	ErrAddressPrefix = errors.New("address is not pay-to-pubkey-hash on this network")
	ErrAddressLength = errors.New("address payload must be 20 bytes")
	ErrKeyLength     = errors.New("private key must be 32 bytes")
)

// P2PKHAddress returns the legacy pay-to-pubkey-hash address of a public
// key. Compressed and uncompressed keys give different addresses.
func (p *Params) P2PKHAddress(pubKey []byte) string {
	h := crypto.Hash160(pubKey)
	return crypto.Base58CheckEncode([]byte{p.Prefixes.PubKeyHash}, h[:])
}

// ParseP2PKH decodes a legacy pay-to-pubkey-hash address into its hash160.
func (p *Params) ParseP2PKH(addr string) ([crypto.Hash160Size]byte, error) {
	var out [crypto.Hash160Size]byte
	payload, err := crypto.Base58CheckDecodePrefix(addr, []byte{p.Prefixes.PubKeyHash})
	if err != nil {
		if errors.Is(err, crypto.ErrPrefixMismatch) {
			return out, fmt.Errorf("%w: %s", ErrAddressPrefix, addr)
		}
		return out, err
	}
	if len(payload) != crypto.Hash160Size {
		return out, ErrAddressLength
	}
	copy(out[:], payload)
	return out, nil
}

// WIF encodes a private key in wallet import format for a compressed
// public key.
func (p *Params) WIF(priv []byte) (string, error) {
	if len(priv) != 32 {
		return "", ErrKeyLength
	}
	payload := make([]byte, 0, 33)
	payload = append(payload, priv...)
	payload = append(payload, 0x01)
	return crypto.Base58CheckEncode([]byte{p.Prefixes.PrivateKey}, payload), nil
}
