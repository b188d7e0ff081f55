// walletkit-cli derives keys, builds and signs transfers, and checks
// bitcoin cash difficulty from the command line.
package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/walletkit-core/config"
	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/internal/storage"
)

var version = "dev"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Println("walletkit-cli", version)
		return
	}
	if flags.Help || len(flags.Args) == 0 {
		usage()
		if flags.Help {
			return
		}
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	defer log.Close()

	e, err := openEnv(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer e.close()

	cmd, args := flags.Args[0], flags.Args[1:]
	switch cmd {
	case "mnemonic":
		cmdMnemonic(args)
	case "wallet":
		cmdWallet(e, args)
	case "address":
		cmdAddress(e, args)
	case "eth":
		cmdEth(e, args)
	case "xtz":
		cmdXtz(e, args)
	case "zarith":
		cmdZarith(args)
	case "asert":
		cmdASERT(e, args)
	case "checkpoints":
		cmdCheckpoints(e, args)
	case "headers":
		cmdHeaders(e, args)
	case "reset":
		cmdReset(e, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: walletkit-cli [global flags] <command> [flags]

Commands:
  mnemonic new [--words 12|24]    Generate a BIP-39 mnemonic
  mnemonic check "<words>"        Validate a mnemonic

  wallet create --name <n> [--mnemonic "..."]
                                  Seal a seed in the vault
  wallet list                     List vault entries

  address eth|xtz|bch --wallet <w> [--index <i>] [--wif]
                                  Show a derived address

  eth sign --wallet <w> --to <addr> --amount <ether> [--token <contract>]
           [--gas-limit <n>] [--nonce <n>]
                                  Sign an ether or ERC-20 transfer
  eth decode [--unsigned] <hex>   Decode a raw transaction
  eth list --wallet <w>           List stored transactions

  xtz forge --wallet <w> --to <addr> --amount <mutez> --branch <B...>
            [--delegate] [--counter <n> --gas <n> --storage <n>]
                                  Forge and sign a transfer or delegation
  xtz decode [--signed] <hex>     Decode forged operation contents

  zarith encode <n> | decode <hex>
                                  Convert natural numbers

  asert <prev-height> <prev-timestamp>
                                  Expected target of the next block
  checkpoints [--before <unix>]   List checkpoints
  headers import <file>           Verify and store "<height> <hex>" headers
  headers status                  Show the stored header tip
  headers prune [--keep <n>]      Drop headers far below the tip

  reset eth|xtz|bch|wallet        Delete stored records for the network

`)
	config.PrintUsage(os.Stderr)
}

// env holds the storage opened for one run.
type env struct {
	cfg *config.Config
	db  storage.DB
}

func openEnv(cfg *config.Config) (*env, error) {
	e := &env{cfg: cfg}
	backend, ok := cfg.StorageBackend()
	if !ok {
		return e, nil
	}
	db, err := storage.Open(backend, cfg.StorageDir())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}
	e.db = db
	return e, nil
}

// files returns the record store for currency on network.
func (e *env) files(currency, network string) fileservice.Service {
	if e.db == nil {
		return fileservice.NOP{}
	}
	s, err := fileservice.New(e.db, currency, network)
	if err != nil {
		fatal("file service: %v", err)
	}
	return s
}

// cmdReset wipes one currency's records on the configured network.
func cmdReset(e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: walletkit-cli reset eth|xtz|bch|wallet")
	}
	if e.db == nil {
		fatal("storage is disabled")
	}
	network := string(e.cfg.Network)
	switch args[0] {
	case "eth":
		n, err := e.cfg.EthNetwork()
		if err != nil {
			fatal("%v", err)
		}
		network = n.Name
	case "xtz", "bch", "wallet":
	default:
		fatal("Unknown currency: %s", args[0])
	}
	s, err := fileservice.New(e.db, args[0], network)
	if err != nil {
		fatal("%v", err)
	}
	if err := s.Wipe(); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Removed %s records for %s\n", args[0], network)
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			log.Storage.Warn().Err(err).Msg("Close storage")
		}
	}
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
