package config

import (
	"fmt"
	"os"

	"treasury_dashboard/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server        ServerConfig          `yaml:"server"`
	Logging       LoggingConfig         `yaml:"logging"`
	DeBank        DeBankConfig          `yaml:"deBank"`
	Dune          DuneConfig            `yaml:"dune"`
	Wallets       []entity.WalletSpec   `yaml:"wallets"`
	StaticWallets []entity.StaticWallet `yaml:"staticWallets"`
	Rules         RulesConfig           `yaml:"rules"`
	Yield         YieldConfig           `yaml:"yield"`
	ProtocolStats ProtocolStatsConfig   `yaml:"protocolStats"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// DeBankConfig holds the configuration for the DeBank Pro client.
// AccessKey may be left empty and supplied via DEBANK_ACCESS_KEY instead.
type DeBankConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	AccessKey            string  `yaml:"accessKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	WalletRatePerSecond  float64 `yaml:"walletRatePerSecond"`
	WalletRateBurst      int     `yaml:"walletRateBurst"`
}

// DuneConfig holds the configuration for the Dune Analytics client.
type DuneConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
	MaxConcurrentQueries int    `yaml:"maxConcurrentQueries"`
}

// RulesConfig carries the exclusion and classification rule sets. All matching
// is case-insensitive; the loader does not normalize case, the rule engine does.
type RulesConfig struct {
	BlacklistedTokens    []string          `yaml:"blacklistedTokens"`
	ReceiptTokens        []string          `yaml:"receiptTokens"`
	SkipProtocols        []string          `yaml:"skipProtocols"`
	EthExposureSymbols   []string          `yaml:"ethExposureSymbols"`
	GovernanceSymbols    []string          `yaml:"governanceSymbols"`
	DirectionalTokens    []string          `yaml:"directionalTokens"`
	DirectionalProtocols []string          `yaml:"directionalProtocols"`
	SemiLiquidProtocols  []string          `yaml:"semiLiquidProtocols"`
	DisplayNames         map[string]string `yaml:"displayNames"`
}

// RateBand bounds an annualized rate in percent.
type RateBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// MockAssetConfig seeds the synthetic preview series for one asset.
type MockAssetConfig struct {
	BasePrice float64 `yaml:"basePrice"`
	BaseRate  float64 `yaml:"baseRate"`
}

// YieldConfig holds the yield dashboard pipeline configuration.
type YieldConfig struct {
	Queries     map[string]int64           `yaml:"queries"`
	IngestBand  RateBand                   `yaml:"ingestBand"`
	WindowBand  RateBand                   `yaml:"windowBand"`
	Ranges      []int                      `yaml:"ranges"`
	MockAssets  map[string]MockAssetConfig `yaml:"mockAssets"`
	MockDays    int                        `yaml:"mockDays"`
	SeriesLimit int                        `yaml:"seriesLimit"`
}

// ProtocolStatsConfig maps the protocol analytics sections to query IDs.
type ProtocolStatsConfig struct {
	Queries map[string]int64 `yaml:"queries"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.applyDefaults()

	if cfg.DeBank.AccessKey == "" {
		if key := os.Getenv("DEBANK_ACCESS_KEY"); key != "" {
			cfg.DeBank.AccessKey = key
			logrus.Info("DeBank access key taken from DEBANK_ACCESS_KEY environment variable")
		}
	}
	if cfg.Dune.APIKey == "" {
		if key := os.Getenv("DUNE_API_KEY"); key != "" {
			cfg.Dune.APIKey = key
			logrus.Info("Dune API key taken from DUNE_API_KEY environment variable")
		}
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.DeBank.BaseURL == "" {
		cfg.DeBank.BaseURL = "https://pro-openapi.debank.com"
		logrus.Infof("DeBank.BaseURL not set, defaulting to %s", cfg.DeBank.BaseURL)
	}
	if cfg.DeBank.RequestTimeoutMillis == 0 {
		cfg.DeBank.RequestTimeoutMillis = 10000
		logrus.Infof("DeBank.RequestTimeoutMillis not set, defaulting to %d ms", cfg.DeBank.RequestTimeoutMillis)
	}
	if cfg.DeBank.WalletRatePerSecond == 0 {
		// Mirrors the upstream guidance of roughly one wallet every 200ms.
		cfg.DeBank.WalletRatePerSecond = 5
		logrus.Infof("DeBank.WalletRatePerSecond not set, defaulting to %.0f", cfg.DeBank.WalletRatePerSecond)
	}
	if cfg.DeBank.WalletRateBurst == 0 {
		cfg.DeBank.WalletRateBurst = 1
	}
	if cfg.Dune.BaseURL == "" {
		cfg.Dune.BaseURL = "https://api.dune.com"
		logrus.Infof("Dune.BaseURL not set, defaulting to %s", cfg.Dune.BaseURL)
	}
	if cfg.Dune.RequestTimeoutMillis == 0 {
		cfg.Dune.RequestTimeoutMillis = 15000
		logrus.Infof("Dune.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Dune.RequestTimeoutMillis)
	}
	if cfg.Dune.CacheTTLMinutes == 0 {
		cfg.Dune.CacheTTLMinutes = 10
		logrus.Infof("Dune.CacheTTLMinutes not set, defaulting to %d minutes", cfg.Dune.CacheTTLMinutes)
	}
	if cfg.Dune.MaxConcurrentQueries == 0 {
		cfg.Dune.MaxConcurrentQueries = 4
	}
	if cfg.Yield.IngestBand == (RateBand{}) {
		cfg.Yield.IngestBand = RateBand{Min: -5, Max: 20}
		logrus.Infof("Yield.IngestBand not set, defaulting to [%.0f, %.0f]", cfg.Yield.IngestBand.Min, cfg.Yield.IngestBand.Max)
	}
	if cfg.Yield.WindowBand == (RateBand{}) {
		cfg.Yield.WindowBand = RateBand{Min: -15, Max: 30}
		logrus.Infof("Yield.WindowBand not set, defaulting to [%.0f, %.0f]", cfg.Yield.WindowBand.Min, cfg.Yield.WindowBand.Max)
	}
	if len(cfg.Yield.Ranges) == 0 {
		cfg.Yield.Ranges = []int{14, 30, 90}
	}
	if cfg.Yield.MockDays == 0 {
		cfg.Yield.MockDays = 365
	}
	if cfg.Yield.SeriesLimit == 0 {
		cfg.Yield.SeriesLimit = 60
	}
}
