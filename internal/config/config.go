// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting. Only the RPC URL has a meaningful
// zero value; an empty contract address routes all traffic to the local
// fallback store.
type Config struct {
	// Ledger access
	RPCURL          string `env:"ADNET_RPC_URL"          envDefault:"https://buildnet.massa.net/api/v2"`
	WSURL           string `env:"ADNET_WS_URL"`
	ContractAddress string `env:"ADNET_CONTRACT_ADDRESS"`
	WalletSecret    string `env:"ADNET_WALLET_SECRET"`

	// Call economics
	DefaultFee  string `env:"ADNET_DEFAULT_FEE"  envDefault:"0.02"`
	CreateFee   string `env:"ADNET_CREATE_FEE"   envDefault:"0.05"`
	MaxGas      uint64 `env:"ADNET_MAX_GAS"      envDefault:"160000000"`
	ListLimit   uint32 `env:"ADNET_LIST_LIMIT"   envDefault:"200"`
	PayoutBatch uint32 `env:"ADNET_PAYOUT_BATCH" envDefault:"25"`

	// Local fallback store: memory, redis or postgres.
	StoreBackend string `env:"ADNET_STORE_BACKEND" envDefault:"memory"`
	RedisAddr    string `env:"ADNET_REDIS_ADDR"    envDefault:"localhost:6379"`
	PostgresDSN  string `env:"ADNET_POSTGRES_DSN"`

	// Analytics sink, optional.
	ClickhouseDSN string `env:"ADNET_CLICKHOUSE_DSN"`

	// Simulated submission delay for unconfigured writes.
	SimulatedLatency time.Duration `env:"ADNET_SIMULATED_LATENCY" envDefault:"600ms"`

	// Metrics endpoint bind address, empty disables the listener.
	MetricsAddr string `env:"ADNET_METRICS_ADDR"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Configured reports whether a contract address is set.
func (c *Config) Configured() bool {
	return c.ContractAddress != ""
}
