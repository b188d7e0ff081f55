package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/Klingon-tech/walletkit-core/internal/account"
	"github.com/Klingon-tech/walletkit-core/internal/wallet"
)

// ── mnemonic ────────────────────────────────────────────────────────────

func cmdMnemonic(args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli mnemonic new|check")
	}
	switch args[0] {
	case "new":
		fs := flag.NewFlagSet("mnemonic new", flag.ExitOnError)
		words := fs.Int("words", 24, "Word count: 12, 15, 18, 21 or 24")
		fs.Parse(args[1:])
		if *words < 12 || *words > 24 || *words%3 != 0 {
			fatal("word count must be 12, 15, 18, 21 or 24")
		}
		m, err := wallet.GenerateMnemonic(wallet.English(), *words/3*32)
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		fmt.Println(m)
	case "check":
		if len(args) < 2 {
			fatal("Usage: walletkit-cli mnemonic check \"<words>\"")
		}
		m := strings.Join(args[1:], " ")
		if err := wallet.ValidateMnemonic(wallet.English(), m); err != nil {
			fatal("%v", err)
		}
		fmt.Println("valid")
	default:
		fatal("unknown mnemonic command: %s", args[0])
	}
}

// ── wallet ──────────────────────────────────────────────────────────────

func (e *env) vault() *wallet.Vault {
	return wallet.NewVault(e.files("wallet", string(e.cfg.Network)), wallet.DefaultParams())
}

func cmdWallet(e *env, args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli wallet create|list")
	}
	switch args[0] {
	case "create":
		cmdWalletCreate(e, args[1:])
	case "list":
		names, err := e.vault().List()
		if err != nil {
			fatal("list wallets: %v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	default:
		fatal("unknown wallet command: %s", args[0])
	}
}

func cmdWalletCreate(e *env, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic to import (default: generate)")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: walletkit-cli wallet create --name <name> [--mnemonic \"...\"]")
	}

	m := *mnemonic
	if m == "" {
		var err error
		if m, err = wallet.GenerateMnemonic(wallet.English(), 256); err != nil {
			fatal("generate mnemonic: %v", err)
		}
		fmt.Println("Mnemonic (write this down!):")
		fmt.Printf("  %s\n\n", m)
	}
	seed, err := wallet.SeedFromMnemonic(wallet.English(), m, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	defer zero(seed)

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	acct, err := account.NewFromSeed(seed)
	if err != nil {
		fatal("derive account: %v", err)
	}

	v := e.vault()
	if err := v.Create(*name, seed, password); err != nil {
		fatal("create wallet: %v", err)
	}
	addr := acct.PrimaryAddress().ChecksumString()
	if err := v.AddAccount(*name, wallet.AccountEntry{Index: 0, Name: "Default", Address: addr}); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("Wallet created: %s\n", *name)
	fmt.Printf("Address: %s\n", addr)
}

// loadSeed prompts for the password of wallet name and opens its seed.
// The caller zeroes the result.
func (e *env) loadSeed(name string) []byte {
	if name == "" {
		fatal("--wallet is required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	defer zero(password)
	seed, err := e.vault().Load(name, password)
	if err != nil {
		fatal("open wallet: %v", err)
	}
	return seed
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ── address ─────────────────────────────────────────────────────────────

func cmdAddress(e *env, args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli address eth|xtz|bch --wallet <w> [--index <i>] [--wif]")
	}
	chain := args[0]
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Address or account index")
	wif := fs.Bool("wif", false, "Also print the private key (bch only)")
	fs.Parse(args[1:])

	seed := e.loadSeed(*name)
	defer zero(seed)

	switch chain {
	case "eth":
		hd, err := wallet.EthereumKey(seed, uint32(*index))
		if err != nil {
			fatal("derive key: %v", err)
		}
		addr, err := hd.EthereumAddress()
		if err != nil {
			fatal("derive address: %v", err)
		}
		fmt.Println(addr.ChecksumString())
	case "xtz":
		acct, err := wallet.TezosAccount(seed, uint32(*index))
		if err != nil {
			fatal("derive account: %v", err)
		}
		fmt.Println(acct.Address)
		fmt.Println(acct.PublicKeyString())
	case "bch":
		params, err := e.cfg.BCHParams()
		if err != nil {
			fatal("%v", err)
		}
		master, err := wallet.NewMasterKey(seed)
		if err != nil {
			fatal("derive master key: %v", err)
		}
		hd, err := master.DerivePath(params.DerivationPath(0, uint32(*index))...)
		if err != nil {
			fatal("derive key: %v", err)
		}
		fmt.Println(params.P2PKHAddress(hd.PublicKeyBytes()))
		if *wif {
			priv := hd.PrivateKeyBytes()
			defer zero(priv)
			s, err := params.WIF(priv)
			if err != nil {
				fatal("encode key: %v", err)
			}
			fmt.Println(s)
		}
	default:
		fatal("unknown chain: %s", chain)
	}
}
