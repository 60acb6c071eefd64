package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ListenAddr string

	BaseURL    string
	ChainID    uint64
	APIKey     string
	Contract   string
	EventTopic string

	WalletsFile string

	CacheTTL     time.Duration
	FetchTries   int
	FetchTimeout time.Duration
	PageSize     int

	ReconcileTries   int
	ReconcileWorkers int

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
// ETHERSCAN_API_KEY is honored directly alongside the PRESALE_ prefix,
// since that is the variable name Etherscan users already export.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESALE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("api-key", "PRESALE_API_KEY", "ETHERSCAN_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("listen", ":8080")
	v.SetDefault("base-url", "https://api.etherscan.io/v2/api")
	v.SetDefault("chain-id", uint64(1))
	v.SetDefault("contract", "0x10Cd25B8fA6f97356C82aAb8da039C3D7eF18401")
	v.SetDefault("event-topic", "0x95cfdb8b2e91654ec715d9403064639685780d9bc570c4c0732886c210481b9f")
	v.SetDefault("wallets-file", "./data_check.txt")
	v.SetDefault("cache-ttl", 25*time.Second)
	v.SetDefault("fetch-tries", 4)
	v.SetDefault("fetch-timeout", 10*time.Second)
	v.SetDefault("page-size", 0)
	v.SetDefault("reconcile-tries", 3)
	v.SetDefault("reconcile-workers", 4)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ListenAddr:       v.GetString("listen"),
		BaseURL:          v.GetString("base-url"),
		ChainID:          v.GetUint64("chain-id"),
		APIKey:           v.GetString("api-key"),
		Contract:         v.GetString("contract"),
		EventTopic:       v.GetString("event-topic"),
		WalletsFile:      v.GetString("wallets-file"),
		CacheTTL:         v.GetDuration("cache-ttl"),
		FetchTries:       v.GetInt("fetch-tries"),
		FetchTimeout:     v.GetDuration("fetch-timeout"),
		PageSize:         v.GetInt("page-size"),
		ReconcileTries:   v.GetInt("reconcile-tries"),
		ReconcileWorkers: v.GetInt("reconcile-workers"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}
