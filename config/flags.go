package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Storage
	Storage string

	// Ethereum
	EthNetwork  string
	EthGasPrice string
	EthGasLimit uint64

	// Tezos
	MutezPerByte uint64

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (the command and its arguments)
	Args []string

	// Explicitly-set flags whose zero value is meaningful.
	SetLogJSON      bool
	SetMutezPerByte bool
}

// ParseFlags parses global command-line flags from args, stopping at the
// first positional argument.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("walletkit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	testnet := fs.Bool("testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Storage
	fs.StringVar(&f.Storage, "storage", "", "Storage backend (badger, leveldb, memory, nop)")

	// Ethereum
	fs.StringVar(&f.EthNetwork, "eth-network", "", "Ethereum network (mainnet, goerli, sepolia)")
	fs.StringVar(&f.EthGasPrice, "eth-gasprice", "", "Gas price in gwei")
	fs.Uint64Var(&f.EthGasLimit, "eth-gaslimit", 0, "Gas limit")

	// Tezos
	fs.Uint64Var(&f.MutezPerByte, "xtz-mutezperbyte", 0, "Tezos fee per byte in mutez")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *testnet {
		f.Network = string(Testnet)
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.SetMutezPerByte = isFlagSet(fs, "xtz-mutezperbyte")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Storage
	if f.Storage != "" {
		cfg.Storage.Backend = f.Storage
	}

	// Ethereum
	if f.EthNetwork != "" {
		cfg.Eth.Network = f.EthNetwork
	}
	if f.EthGasPrice != "" {
		cfg.Eth.GasPrice = f.EthGasPrice
	}
	if f.EthGasLimit != 0 {
		cfg.Eth.GasLimit = f.EthGasLimit
	}

	// Tezos
	if f.SetMutezPerByte {
		cfg.Tezos.MutezPerByte = f.MutezPerByte
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the global options to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Global Options:
  --help, -h          Show this help message
  --version, -v       Show version information
  --network           Network type: mainnet (default) or testnet
  --testnet           Shorthand for --network=testnet
  --datadir           Data directory (default: ~/.walletkit)
  --config, -c        Config file path (default: <datadir>/walletkit.conf)
  --storage           Storage backend: badger (default), leveldb, memory, nop
  --eth-network       Ethereum network: mainnet, goerli, sepolia
  --eth-gasprice      Gas price in gwei (default: 2)
  --eth-gaslimit      Gas limit (default: 21000)
  --xtz-mutezperbyte  Tezos fee per forged byte in mutez (default: 1)
  --log-level         Log level: debug, info, warn, error, disabled
  --log-file          Log file path (default: stderr)
  --log-json          Output logs as JSON
`)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
//
// Data directories are only created for persistent storage backends.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	// Determine network first (needed for defaults)
	network := Mainnet
	if strings.ToLower(flags.Network) == string(Testnet) {
		network = Testnet
	}

	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	persistent := flags.Storage == "" || (flags.Storage != BackendNOP && flags.Storage != "memory")
	if persistent {
		if err := EnsureDataDirs(cfg); err != nil {
			return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
		}
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.StorageDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
