package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
logging:
  level: "debug"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "https://pro-openapi.debank.com", cfg.DeBank.BaseURL)
	assert.Equal(t, int64(10000), cfg.DeBank.RequestTimeoutMillis)
	assert.Equal(t, 5.0, cfg.DeBank.WalletRatePerSecond)
	assert.Equal(t, "https://api.dune.com", cfg.Dune.BaseURL)
	assert.Equal(t, 10, cfg.Dune.CacheTTLMinutes)
	assert.Equal(t, RateBand{Min: -5, Max: 20}, cfg.Yield.IngestBand)
	assert.Equal(t, RateBand{Min: -15, Max: 30}, cfg.Yield.WindowBand)
	assert.Equal(t, []int{14, 30, 90}, cfg.Yield.Ranges)
	assert.Equal(t, 365, cfg.Yield.MockDays)
	assert.Equal(t, 60, cfg.Yield.SeriesLimit)
}

func TestLoadConfigParsesFullDocument(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: ":9090"
deBank:
  accessKey: "key-from-file"
wallets:
  - address: "0xF3D913De4B23ddB9CfdFAF955BAC5634CbAE95F4"
    name: "DAO LT TREASURY"
    emoji: "👑"
staticWallets:
  - address: "0xdd82875f0840aad58a455a70b88eed9f59cec7c7"
    name: "DAO COLLATERAL"
    totalBalance: 2801733
    tokens:
      - symbol: "Overcollateralization"
        name: "Protocol Collateral"
        amount: 1
        price: 2801733
rules:
  blacklistedTokens: [ETHG, AICC]
  displayNames:
    MC_USD0: "Morpho MEV USD0"
yield:
  queries:
    SPKCC: 6603491
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "key-from-file", cfg.DeBank.AccessKey)

	require.Len(t, cfg.Wallets, 1)
	assert.Equal(t, "DAO LT TREASURY", cfg.Wallets[0].Name)

	require.Len(t, cfg.StaticWallets, 1)
	sw := cfg.StaticWallets[0]
	assert.Equal(t, "DAO COLLATERAL", sw.Name)
	assert.Equal(t, 2801733.0, sw.TotalBalance)
	require.Len(t, sw.Tokens, 1)
	assert.Equal(t, "Overcollateralization", sw.Tokens[0].Symbol)
	assert.Equal(t, 2801733.0, sw.Tokens[0].Price)

	assert.Contains(t, cfg.Rules.BlacklistedTokens, "ETHG")
	assert.Equal(t, "Morpho MEV USD0", cfg.Rules.DisplayNames["MC_USD0"])
	assert.Equal(t, int64(6603491), cfg.Yield.Queries["SPKCC"])
}

func TestLoadConfigEnvFallbackForKeys(t *testing.T) {
	t.Setenv("DEBANK_ACCESS_KEY", "env-debank")
	t.Setenv("DUNE_API_KEY", "env-dune")

	path := writeTempConfig(t, "logging:\n  level: \"info\"\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-debank", cfg.DeBank.AccessKey)
	assert.Equal(t, "env-dune", cfg.Dune.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
