package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-prices/internal/cache"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, cache.DefaultPolicies(), cfg.CachePolicies)
	assert.Equal(t, 250*time.Millisecond, cfg.HistoryStockDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  sweep_schedule: "@every 5m"
  policies:
    crypto:
      fresh: 10m
      hard_expiry: 12h
providers:
  coingecko:
    base_url: https://pro-api.coingecko.com/api/v3
    requests_per_minute: 500
history:
  crypto_delay: 2s
warmer:
  enabled: false
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("COINGECKO_RPM", "250")
	t.Setenv("HISTORY_STOCK_DELAY", "100ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "@every 5m", cfg.SweepSchedule)
	assert.Equal(t, cache.Policy{Fresh: 10 * time.Minute, HardExpiry: 12 * time.Hour}, cfg.CachePolicies[cache.Crypto])
	assert.Equal(t, time.Minute, cfg.CachePolicies[cache.Stocks].Fresh)
	assert.Equal(t, "https://pro-api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, 250, cfg.CoinGecko.RequestsPerMinute)
	assert.Equal(t, 2*time.Second, cfg.HistoryCryptoDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.HistoryStockDelay)
	assert.False(t, cfg.WarmEnabled)
}

func TestLoad_OnChainOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ETH_RPC_URL", "http://localhost:8545")
	t.Setenv("UNISWAP_ROUTER_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("WETH_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("QUOTE_TOKEN_ADDRESS", "0x3333333333333333333333333333333333333333")
	t.Setenv("QUOTE_TOKEN_DECIMALS", "18")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.EthRPCURL)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.UniswapRouterAddress)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.WETHAddress)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", cfg.QuoteTokenAddress)
	assert.Equal(t, 18, cfg.QuoteTokenDecimals)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsBadPolicy(t *testing.T) {
	cfg := defaults()
	cfg.CachePolicies[cache.Stocks] = cache.Policy{Fresh: time.Hour, HardExpiry: time.Minute}
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache policy stocks")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestDSN(t *testing.T) {
	cfg := defaults()
	cfg.DBUser, cfg.DBPassword = "u", "p"
	assert.Equal(t, "postgres://u:p@localhost:5432/trahn_prices?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://elsewhere/db"
	assert.Equal(t, "postgres://elsewhere/db", cfg.DSN())
}
