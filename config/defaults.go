package config

import "github.com/Klingon-tech/walletkit-core/internal/storage"

// Default fee settings.
const (
	DefaultGasPriceGwei = "2"
	DefaultMutezPerByte = 1
)

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Storage: StorageConfig{
			Backend: storage.BackendBadger,
		},
		Eth: EthConfig{
			Network:  "mainnet",
			GasPrice: DefaultGasPriceGwei,
			GasLimit: 21000,
		},
		Tezos: TezosConfig{
			MutezPerByte: DefaultMutezPerByte,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Eth.Network = "sepolia"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
