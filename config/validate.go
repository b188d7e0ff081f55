package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Klingon-tech/walletkit-core/pkg/eth"
)

var validate = validator.New()

// Validate checks runtime config for obvious operator mistakes. Values are
// normalized to lower case before the field rules run.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	cfg.Network = NetworkType(strings.ToLower(strings.TrimSpace(string(cfg.Network))))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.Eth.Network = strings.ToLower(strings.TrimSpace(cfg.Eth.Network))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	// Ethereum mainnet is only reachable from a mainnet configuration.
	if cfg.Network == Testnet && cfg.Eth.Network == eth.Mainnet.Name {
		return fmt.Errorf("eth.network %q cannot be used with network %q", cfg.Eth.Network, cfg.Network)
	}
	if _, err := cfg.EthGasPrice(); err != nil {
		return fmt.Errorf("eth.gasprice: %w", err)
	}
	return nil
}
