package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strings"

	"github.com/Klingon-tech/walletkit-core/internal/account"
	"github.com/Klingon-tech/walletkit-core/internal/manager"
	"github.com/Klingon-tech/walletkit-core/pkg/eth"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

func cmdEth(e *env, args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli eth sign|decode|list")
	}
	switch args[0] {
	case "sign":
		cmdEthSign(e, args[1:])
	case "decode":
		cmdEthDecode(e, args[1:])
	case "list":
		cmdEthList(e, args[1:])
	default:
		fatal("unknown eth command: %s", args[0])
	}
}

// ethWallet opens the stored transactions of the account in seed.
func (e *env) ethWallet(seed []byte) *manager.EthereumWallet {
	network, err := e.cfg.EthNetwork()
	if err != nil {
		fatal("%v", err)
	}
	gasPrice, err := e.cfg.EthGasPrice()
	if err != nil {
		fatal("%v", err)
	}
	acct, err := account.NewFromSeed(seed)
	if err != nil {
		fatal("derive account: %v", err)
	}
	w, err := manager.NewEthereumWallet(acct, manager.EthereumConfig{
		Network:  network,
		GasPrice: gasPrice,
		GasLimit: e.cfg.Eth.GasLimit,
	}, e.files("eth", network.Name))
	if err != nil {
		fatal("open wallet: %v", err)
	}
	return w
}

func cmdEthSign(e *env, args []string) {
	fs := flag.NewFlagSet("eth sign", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	to := fs.String("to", "", "Recipient address")
	amount := fs.String("amount", "", "Amount in ether, or token base units with --token")
	token := fs.String("token", "", "ERC-20 contract address")
	gasLimit := fs.Uint64("gas-limit", 0, "Estimated gas limit (default: config)")
	nonce := fs.Int64("nonce", -1, "Network nonce of the sender, if known")
	fs.Parse(args)

	if *to == "" || *amount == "" {
		fatal("Usage: walletkit-cli eth sign --wallet <w> --to <addr> --amount <ether>")
	}
	target, err := types.ParseAddress(*to)
	if err != nil {
		fatal("invalid recipient address: %v", err)
	}

	seed := e.loadSeed(*name)
	defer zero(seed)
	w := e.ethWallet(seed)
	if *nonce >= 0 {
		if _, err := w.AnnounceNonce(w.Address(), uint64(*nonce)); err != nil {
			fatal("set nonce: %v", err)
		}
	}

	var tx *eth.Transaction
	if *token != "" {
		contract, err := types.ParseAddress(*token)
		if err != nil {
			fatal("invalid token address: %v", err)
		}
		units, err := eth.ParseUnits(*amount, eth.Wei)
		if err != nil {
			fatal("invalid amount: %v", err)
		}
		tx = w.CreateTokenTransfer(contract, target, units, *gasLimit)
	} else {
		wei, err := eth.ParseUnits(*amount, eth.Ether)
		if err != nil {
			fatal("invalid amount: %v", err)
		}
		tx = w.CreateTransfer(target, wei, *gasLimit)
	}
	if err := w.Sign(tx, seed); err != nil {
		fatal("sign: %v", err)
	}

	fmt.Printf("Hash:  %s\n", tx.Hash().Hex())
	fmt.Printf("Nonce: %d\n", tx.Nonce)
	fmt.Printf("Raw:   %s\n", tx.RawHex(w.Network()))
}

func cmdEthDecode(e *env, args []string) {
	fs := flag.NewFlagSet("eth decode", flag.ExitOnError)
	unsigned := fs.Bool("unsigned", false, "Input is an unsigned transaction")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: walletkit-cli eth decode [--unsigned] <hex>")
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(fs.Arg(0), "0x"))
	if err != nil {
		fatal("invalid hex: %v", err)
	}
	network, err := e.cfg.EthNetwork()
	if err != nil {
		fatal("%v", err)
	}
	form := eth.FormSigned
	if *unsigned {
		form = eth.FormUnsigned
	}
	tx, err := eth.DecodeTransaction(raw, network, form)
	if err != nil {
		fatal("decode: %v", err)
	}

	fmt.Printf("Network:   %s (chain id %d)\n", network.Name, network.ChainID)
	if form == eth.FormSigned {
		fmt.Printf("Hash:      %s\n", tx.Hash().Hex())
		fmt.Printf("From:      %s\n", tx.Source().ChecksumString())
	}
	fmt.Printf("To:        %s\n", tx.Target.ChecksumString())
	fmt.Printf("Value:     %s ETH\n", eth.FormatUnits(tx.Amount, eth.Ether))
	fmt.Printf("Nonce:     %d\n", tx.Nonce)
	fmt.Printf("Gas price: %s gwei\n", eth.FormatUnits(tx.GasPrice, eth.Gwei))
	fmt.Printf("Gas limit: %d\n", tx.GasLimit)
	if tt, ok := tx.TokenTransfer(); ok {
		fmt.Printf("Token:     transfer %s to %s\n", tt.Amount, tt.To.ChecksumString())
	} else if len(tx.Data) > 0 {
		fmt.Printf("Data:      0x%x\n", tx.Data)
	}
}

func cmdEthList(e *env, args []string) {
	fs := flag.NewFlagSet("eth list", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	seed := e.loadSeed(*name)
	defer zero(seed)
	w := e.ethWallet(seed)
	for _, tx := range w.Transactions() {
		fmt.Printf("%s  %-8s  %s\n", tx.Hash().Hex(), tx.Status().Kind(), tx.Summary())
	}
	if balance, ok := w.Balance(); ok {
		fmt.Printf("Balance: %s ETH\n", eth.FormatUnits(balance, eth.Ether))
	}
}
