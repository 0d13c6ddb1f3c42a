package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Hedera   Hedera   `mapstructure:"hedera"`
	Trading  Trading  `mapstructure:"trading"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Hedera holds connection settings for the Hedera mirror node and the
// JSON-RPC relay used for contract execution.
type Hedera struct {
	MirrorBaseURL  string   `mapstructure:"mirror_base_url"`
	RelayURL       string   `mapstructure:"relay_url"`
	ChainID        int64    `mapstructure:"chain_id"`
	OperatorKey    string   `mapstructure:"operator_key"` // hex ECDSA private key
	RouterAddress  string   `mapstructure:"router_address"`
	WhbarTokens    []string `mapstructure:"whbar_tokens"` // wrapped-HBAR token ids
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	RPCTimeout     int      `mapstructure:"rpc_timeout"` // seconds
}

// Server holds the configuration for the HTTP API.
type Server struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Trading holds the configuration for trade construction and recovery.
type Trading struct {
	SlippageBps       int    `mapstructure:"slippage_bps"`
	DeadlineSecs      int    `mapstructure:"deadline_secs"`
	GasLimit          uint64 `mapstructure:"gas_limit"`
	DryRun            bool   `mapstructure:"dry_run"`
	ReconcileInterval int    `mapstructure:"reconcile_interval"` // seconds
	StuckTimeout      int    `mapstructure:"stuck_timeout"`      // seconds
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("hedera.mirror_base_url", "https://mainnet-public.mirrornode.hedera.com/api/v1")
	viper.SetDefault("hedera.relay_url", "https://mainnet.hashio.io/api")
	viper.SetDefault("hedera.chain_id", 295)
	viper.SetDefault("hedera.rate_limit", 10) // requests per second
	viper.SetDefault("hedera.rate_limit_burst", 5)
	viper.SetDefault("hedera.rpc_timeout", 30)
	viper.SetDefault("trading.slippage_bps", 100)
	viper.SetDefault("trading.deadline_secs", 120)
	viper.SetDefault("trading.gas_limit", 900000)
	viper.SetDefault("trading.reconcile_interval", 60)
	viper.SetDefault("trading.stuck_timeout", 600)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
