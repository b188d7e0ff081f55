package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Klingon-tech/walletkit-core/config"
	"github.com/Klingon-tech/walletkit-core/internal/chainparams"
	"github.com/Klingon-tech/walletkit-core/internal/consensus"
	"github.com/Klingon-tech/walletkit-core/internal/manager"
)

func cmdASERT(e *env, args []string) {
	if len(args) != 2 {
		fatal("Usage: walletkit-cli asert <prev-height> <prev-timestamp>")
	}
	height, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fatal("invalid height: %v", err)
	}
	ts, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fatal("invalid timestamp: %v", err)
	}

	params := chainparams.ASERT()
	prev := &consensus.BlockHeader{Height: uint32(height), Timestamp: uint32(ts)}
	bits, ok := params.ExpectedTarget(prev.Height+1, prev)
	if !ok {
		fatal("height %d is not above the anchor block %d", prev.Height+1, params.RefHeight)
	}
	target, _, _ := consensus.CompactToBig(bits)
	fmt.Printf("Height: %d\n", prev.Height+1)
	fmt.Printf("Bits:   0x%08x\n", bits)
	fmt.Printf("Target: %064x\n", target)
	if e.cfg.Network != config.Mainnet {
		fmt.Println("Note: testnet headers are not difficulty checked.")
	}
}

func cmdCheckpoints(e *env, args []string) {
	fs := flag.NewFlagSet("checkpoints", flag.ExitOnError)
	before := fs.Uint("before", 0, "Show the checkpoint to sync from for keys created at this unix time")
	fs.Parse(args)

	params, err := e.cfg.BCHParams()
	if err != nil {
		fatal("%v", err)
	}
	show := func(cp chainparams.Checkpoint) {
		fmt.Printf("%7d  %s  %d  0x%08x\n", cp.Height, cp.Hash, cp.Timestamp, cp.Target)
	}
	if *before != 0 {
		show(params.LastCheckpointBefore(uint32(*before)))
		return
	}
	for _, cp := range params.Checkpoints {
		show(cp)
	}
}

func cmdHeaders(e *env, args []string) {
	if len(args) == 0 {
		fatal("Usage: walletkit-cli headers import <file> | status | prune --keep <n>")
	}
	params, err := e.cfg.BCHParams()
	if err != nil {
		fatal("%v", err)
	}
	chain, err := manager.NewHeaderChain(params, e.files(chainparams.Currency, params.Name))
	if err != nil {
		fatal("%v", err)
	}

	switch args[0] {
	case "import":
		if len(args) != 2 {
			fatal("Usage: walletkit-cli headers import <file>")
		}
		accepted, err := importHeaders(chain, args[1])
		fmt.Printf("Accepted: %d\n", accepted)
		if err != nil {
			fatal("%v", err)
		}
	case "status":
		tip, hash := chain.Tip()
		fmt.Printf("Headers: %d\n", chain.Len())
		if tip != nil {
			fmt.Printf("Tip:     %d %s\n", tip.Height, hash)
		}
	case "prune":
		fs := flag.NewFlagSet("headers prune", flag.ExitOnError)
		keep := fs.Uint("keep", 2016, "Headers to keep below the tip")
		fs.Parse(args[1:])
		dropped, err := chain.Prune(uint32(*keep))
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Dropped: %d\n", dropped)
	default:
		fatal("Unknown headers subcommand: %s", args[0])
	}
}

// importHeaders feeds chain one "<height> <80-byte hex>" header per line.
// Headers already held are skipped.
func importHeaders(chain *manager.HeaderChain, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	accepted := 0
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 2 {
			return accepted, fmt.Errorf("line %d: want <height> <hex>", line)
		}
		height, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return accepted, fmt.Errorf("line %d: %w", line, err)
		}
		raw, err := hex.DecodeString(fields[1])
		if err != nil {
			return accepted, fmt.Errorf("line %d: %w", line, err)
		}
		h, err := consensus.ParseHeader(raw, uint32(height))
		if err != nil {
			return accepted, fmt.Errorf("line %d: %w", line, err)
		}
		switch err := chain.Accept(h); {
		case errors.Is(err, manager.ErrHeaderKnown):
		case err != nil:
			return accepted, fmt.Errorf("line %d: %w", line, err)
		default:
			accepted++
		}
	}
	return accepted, sc.Err()
}
