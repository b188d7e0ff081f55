package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/walletkit-core/internal/manager"
	"github.com/Klingon-tech/walletkit-core/internal/wallet"
	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/tezos"
)

func cmdXtz(e *env, args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli xtz forge|decode")
	}
	switch args[0] {
	case "forge":
		cmdXtzForge(e, args[1:])
	case "decode":
		cmdXtzDecode(args[1:])
	default:
		fatal("unknown xtz command: %s", args[0])
	}
}

func cmdXtzForge(e *env, args []string) {
	fs := flag.NewFlagSet("xtz forge", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Account index")
	to := fs.String("to", "", "Recipient, or delegate with --delegate")
	amount := fs.Uint64("amount", 0, "Amount in mutez")
	branch := fs.String("branch", "", "Block hash to branch from")
	delegate := fs.Bool("delegate", false, "Delegate to --to instead of transferring")
	counter := fs.Int64("counter", -1, "Current account counter from the node")
	gas := fs.Uint64("gas", 0, "Simulated consumed gas")
	storageSize := fs.Uint64("storage", 0, "Simulated storage size")
	fs.Parse(args)

	if *branch == "" || (*to == "" && !*delegate) {
		fatal("Usage: walletkit-cli xtz forge --wallet <w> --to <addr> --amount <mutez> --branch <B...>")
	}
	block, err := tezos.ParseBlockHash(*branch)
	if err != nil {
		fatal("invalid branch: %v", err)
	}
	var target tezos.Address
	if *to != "" {
		if target, err = tezos.ParseAddress(*to); err != nil {
			fatal("invalid address: %v", err)
		}
	}

	seed := e.loadSeed(*name)
	defer zero(seed)
	acct, err := wallet.TezosAccount(seed, uint32(*index))
	if err != nil {
		fatal("derive account: %v", err)
	}
	w, err := manager.NewTezosWallet(acct, manager.TezosConfig{
		Network:      string(e.cfg.Network),
		AccountIndex: uint32(*index),
		MutezPerByte: e.cfg.Tezos.MutezPerByte,
	}, e.files("xtz", string(e.cfg.Network)))
	if err != nil {
		fatal("open wallet: %v", err)
	}

	fb := tezos.DefaultFeeBasis(e.cfg.Tezos.MutezPerByte)
	var t *manager.TezosTransfer
	if *delegate {
		t, err = w.CreateDelegation(target, fb)
	} else {
		t, err = w.CreateTransfer(target, *amount, fb)
	}
	if err != nil {
		fatal("create: %v", err)
	}

	if *counter < 0 {
		payload := w.EstimationPayload(t, block)
		fmt.Printf("Simulation payload (%d bytes): %x\n", len(payload), payload)
		fmt.Println("Rerun with --counter, --gas and --storage from the simulation to sign.")
		return
	}
	fee := w.RecoverFeeBasis(t, *gas, *storageSize, uint64(*counter))
	if err := w.Sign(t, block, seed); err != nil {
		fatal("sign: %v", err)
	}
	signed, err := t.SignedHex()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Hash:   %s\n", tezos.OperationHashString(t.Hash))
	fmt.Printf("Fee:    %d mutez\n", fee)
	fmt.Printf("Signed: %s\n", signed)
}

func cmdXtzDecode(args []string) {
	fs := flag.NewFlagSet("xtz decode", flag.ExitOnError)
	signed := fs.Bool("signed", false, "Input carries a trailing signature")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: walletkit-cli xtz decode [--signed] <hex>")
	}
	raw, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		fatal("invalid hex: %v", err)
	}
	if *signed {
		if len(raw) < crypto.Ed25519SignatureSize {
			fatal("input shorter than a signature")
		}
		raw = raw[:len(raw)-crypto.Ed25519SignatureSize]
	}
	l, err := tezos.ParseOperationList(raw)
	if err != nil {
		fatal("decode: %v", err)
	}
	fmt.Printf("Branch: %s\n", l.Branch)
	for i, c := range l.Contents {
		fmt.Printf("[%d] %s from %s fee=%d counter=%d gas=%d storage=%d\n",
			i, c.Operation.Kind(), c.Source, c.Fee, c.Counter, c.GasLimit, c.StorageLimit)
		switch op := c.Operation.(type) {
		case tezos.Transfer:
			fmt.Printf("    amount=%d to %s\n", op.Amount, op.Destination)
		case tezos.Delegation:
			fmt.Printf("    delegate=%s\n", op.Delegate)
		case tezos.Reveal:
			fmt.Printf("    public key %x\n", op.PublicKey)
		}
	}
}

func cmdZarith(args []string) {
	if len(args) != 2 {
		fatal("Usage: walletkit-cli zarith encode <n> | decode <hex>")
	}
	switch args[0] {
	case "encode":
		n, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fatal("invalid number: %v", err)
		}
		fmt.Printf("%x\n", tezos.EncodeZarith(n))
	case "decode":
		b, err := hex.DecodeString(args[1])
		if err != nil {
			fatal("invalid hex: %v", err)
		}
		n, size, err := tezos.DecodeZarith(b)
		if err != nil {
			fatal("decode: %v", err)
		}
		if size != len(b) {
			fatal("%d trailing bytes", len(b)-size)
		}
		fmt.Println(n)
	default:
		fatal("unknown zarith command: %s", args[0])
	}
}
