package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Sensitive values can be overridden
// through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Solana struct {
			RPCURL string `yaml:"rpc_url"`
		} `yaml:"solana"`
		PumpPortal struct {
			WSURL   string `yaml:"ws_url"`
			RestURL string `yaml:"rest_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"pumpportal"`
	} `yaml:"api"`

	Trading struct {
		Tokens         []string        `yaml:"tokens"` // Mint addresses to subscribe/track
		InitialBalance decimal.Decimal `yaml:"initial_balance"`
	} `yaml:"trading"`

	Maintenance struct {
		IntervalSec    int `yaml:"interval_sec"`
		RetentionHours int `yaml:"retention_hours"`
	} `yaml:"maintenance"`

	Storage struct {
		Path string `yaml:"path"` // Empty: resolved under the OS config dir
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Maintenance.IntervalSec == 0 {
		cfg.Maintenance.IntervalSec = 60
	}
	if cfg.Maintenance.RetentionHours == 0 {
		cfg.Maintenance.RetentionHours = 24
	}
}

// Validate checks configuration validity. Missing required endpoints are
// fatal at startup.
func (c *Config) Validate() error {
	if c.API.Solana.RPCURL == "" ||
		(!hasPrefix(c.API.Solana.RPCURL, "http://") && !hasPrefix(c.API.Solana.RPCURL, "https://")) {
		return fmt.Errorf("invalid Solana RPC URL: %s", c.API.Solana.RPCURL)
	}

	if c.API.PumpPortal.WSURL == "" ||
		(!hasPrefix(c.API.PumpPortal.WSURL, "ws://") && !hasPrefix(c.API.PumpPortal.WSURL, "wss://")) {
		return fmt.Errorf("invalid PumpPortal WS URL: %s", c.API.PumpPortal.WSURL)
	}
	if c.API.PumpPortal.RestURL == "" {
		return fmt.Errorf("PumpPortal REST URL is required")
	}

	if c.Maintenance.IntervalSec <= 0 {
		return fmt.Errorf("maintenance interval must be positive")
	}
	if c.Maintenance.RetentionHours <= 0 {
		return fmt.Errorf("retention window must be positive")
	}
	if c.Trading.InitialBalance.IsNegative() {
		return fmt.Errorf("initial balance must not be negative")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overrides config values when environment variables exist.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("SOLANA_RPC_URL"); url != "" {
		cfg.API.Solana.RPCURL = url
	}
	if key := os.Getenv("PUMP_API_KEY"); key != "" {
		cfg.API.PumpPortal.APIKey = key
	}
	if url := os.Getenv("PUMP_WS_URL"); url != "" {
		cfg.API.PumpPortal.WSURL = url
	}
}
