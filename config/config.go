// Package config handles application configuration.
//
// Settings come from three layers, later ones winning: per-network
// defaults, a key = value .conf file in the data directory, and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/walletkit-core/internal/chainparams"
	"github.com/Klingon-tech/walletkit-core/pkg/eth"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// BackendNOP selects a file service that persists nothing.
const BackendNOP = "nop"

// =============================================================================
// Configuration
// =============================================================================

// Config holds wallet runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network" validate:"required,oneof=mainnet testnet"`
	DataDir string      `conf:"datadir" validate:"required"`

	// Persistence
	Storage StorageConfig

	// Ethereum
	Eth EthConfig

	// Tezos
	Tezos TezosConfig

	// Logging
	Log LogConfig
}

// StorageConfig selects the file service backend.
type StorageConfig struct {
	Backend string `conf:"storage.backend" validate:"required,oneof=badger leveldb memory nop"`
}

// EthConfig holds Ethereum transfer defaults.
type EthConfig struct {
	Network  string `conf:"eth.network" validate:"required,oneof=mainnet goerli sepolia"`
	GasPrice string `conf:"eth.gasprice" validate:"required,numeric"` // gwei
	GasLimit uint64 `conf:"eth.gaslimit" validate:"gte=21000"`
}

// TezosConfig holds Tezos fee defaults.
type TezosConfig struct {
	MutezPerByte uint64 `conf:"xtz.mutezperbyte" validate:"lte=100000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level" validate:"omitempty,oneof=debug info warn error disabled"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// EthNetwork returns the configured Ethereum network.
func (c *Config) EthNetwork() (eth.Network, error) {
	return eth.NetworkByName(c.Eth.Network)
}

// EthGasPrice returns the configured gas price in wei.
func (c *Config) EthGasPrice() (uint256.UInt256, error) {
	return eth.ParseUnits(c.Eth.GasPrice, eth.Gwei)
}

// BCHParams returns the bitcoin cash parameters for the configured network.
func (c *Config) BCHParams() (*chainparams.Params, error) {
	return chainparams.ForNetwork(string(c.Network))
}

// StorageBackend returns the storage backend, or false when the file
// service is configured to persist nothing.
func (c *Config) StorageBackend() (string, bool) {
	if c.Storage.Backend == BackendNOP {
		return "", false
	}
	return c.Storage.Backend, true
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.walletkit
//	macOS:   ~/Library/Application Support/WalletKit
//	Windows: %APPDATA%\WalletKit
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletkit"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "WalletKit")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "WalletKit")
		}
		return filepath.Join(home, "AppData", "Roaming", "WalletKit")
	default:
		return filepath.Join(home, ".walletkit")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// StorageDir returns the file service database directory.
func (c *Config) StorageDir() string {
	return filepath.Join(c.NetworkDataDir(), "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "walletkit.conf")
}

// String renders a one-line summary for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("network=%s datadir=%s storage=%s eth=%s", c.Network, c.DataDir, c.Storage.Backend, c.Eth.Network)
}
