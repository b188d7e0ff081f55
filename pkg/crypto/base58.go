package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Base58Check errors.
var (
	ErrBase58         = errors.New("invalid base58 string")
	ErrChecksum       = errors.New("base58check checksum mismatch")
	ErrPrefixMismatch = errors.New("base58check prefix mismatch")
)

// Base58CheckEncode encodes prefix||payload followed by the first four
// bytes of its double SHA-256. Prefixes may be several bytes long.
func Base58CheckEncode(prefix, payload []byte) string {
	buf := make([]byte, 0, len(prefix)+len(payload)+4)
	buf = append(buf, prefix...)
	buf = append(buf, payload...)
	sum := DoubleSHA256(buf)
	buf = append(buf, sum[:4]...)
	return base58.Encode(buf)
}

// Base58CheckDecode decodes s and verifies its checksum, returning the
// prefixed payload.
func Base58CheckDecode(s string) ([]byte, error) {
	raw := base58.Decode(s)
	if len(raw) < 5 {
		return nil, fmt.Errorf("%w: %q", ErrBase58, s)
	}
	body, check := raw[:len(raw)-4], raw[len(raw)-4:]
	sum := DoubleSHA256(body)
	if !bytes.Equal(sum[:4], check) {
		return nil, ErrChecksum
	}
	return body, nil
}

// Base58CheckDecodePrefix decodes s, verifies its checksum and strips an
// expected prefix.
func Base58CheckDecodePrefix(s string, prefix []byte) ([]byte, error) {
	body, err := Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(body, prefix) {
		return nil, ErrPrefixMismatch
	}
	return body[len(prefix):], nil
}
