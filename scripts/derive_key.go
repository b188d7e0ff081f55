// derive_key.go prints the public key and addresses for a hex-encoded
// secp256k1 private key file.
// Usage: go run scripts/derive_key.go [--testnet] <keyfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/walletkit-core/internal/chainparams"
	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
)

func main() {
	args := os.Args[1:]
	params := chainparams.MainNet()
	if len(args) > 0 && args[0] == "--testnet" {
		params = chainparams.TestNet()
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: derive_key [--testnet] <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer key.Zero()

	compressed := key.CompressedPublicKey()
	wif, err := params.WIF(key.Serialize())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(compressed))
	fmt.Printf("eth=%s\n", crypto.AddressFromPublicKey(key.PublicKey()).ChecksumString())
	fmt.Printf("bch=%s\n", params.P2PKHAddress(compressed))
	fmt.Printf("wif=%s\n", wif)
}
