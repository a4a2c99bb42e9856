package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kjannette/trahn-prices/internal/cache"
)

// Provider holds the tunables of one upstream API.
type Provider struct {
	APIKey            string        `yaml:"-"`
	BaseURL           string        `yaml:"base_url"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
}

type Config struct {
	// Secrets (from .env)
	FinnhubAPIKey      string
	CoinGeckoAPIKey    string
	AlphaVantageAPIKey string
	WebhookURL         string
	BotName            string
	APIKey             string
	CORSAllowOrigin    string

	// Server
	Port int

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DBEnabled   bool
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string
	DBMaxConns  int

	// Providers
	Finnhub      Provider
	CoinGecko    Provider
	Yahoo        Provider
	AlphaVantage Provider

	// On-chain ETH fallback (empty RPC URL disables it)
	EthRPCURL            string
	UniswapRouterAddress string
	WETHAddress          string
	QuoteTokenAddress    string
	QuoteTokenDecimals   int

	// Cache
	CachePolicies map[cache.Namespace]cache.Policy
	SweepSchedule string

	// Quotes and history
	BulkConcurrency    int
	HistoryStockDelay  time.Duration
	HistoryCryptoDelay time.Duration

	// Warmer
	WarmEnabled       bool
	WarmInterval      time.Duration
	SeedWindow        time.Duration
	SnapshotRetention time.Duration

	// Alerts
	AlertCooldown time.Duration
}

// fileConfig is the optional YAML layer (CONFIG_FILE). Environment variables
// win over it.
type fileConfig struct {
	Cache struct {
		SweepSchedule string                           `yaml:"sweep_schedule"`
		Policies      map[cache.Namespace]cache.Policy `yaml:"policies"`
	} `yaml:"cache"`
	Providers struct {
		Finnhub      *Provider `yaml:"finnhub"`
		CoinGecko    *Provider `yaml:"coingecko"`
		Yahoo        *Provider `yaml:"yahoo"`
		AlphaVantage *Provider `yaml:"alphavantage"`
	} `yaml:"providers"`
	History struct {
		StockDelay  time.Duration `yaml:"stock_delay"`
		CryptoDelay time.Duration `yaml:"crypto_delay"`
	} `yaml:"history"`
	Warmer struct {
		Enabled           *bool         `yaml:"enabled"`
		Interval          time.Duration `yaml:"interval"`
		SnapshotRetention time.Duration `yaml:"snapshot_retention"`
	} `yaml:"warmer"`
}

func defaults() *Config {
	return &Config{
		BotName:         "TrahnPrices",
		CORSAllowOrigin: "*",
		Port:            8080,
		LogLevel:        "info",
		LogFormat:       "text",

		DBEnabled:  true,
		DBHost:     "localhost",
		DBPort:     5432,
		DBName:     "trahn_prices",
		DBMaxConns: 10,

		Finnhub:      Provider{RequestsPerMinute: 60, Burst: 10},
		CoinGecko:    Provider{RequestsPerMinute: 30, Burst: 5},
		Yahoo:        Provider{RequestsPerMinute: 60, Burst: 5},
		AlphaVantage: Provider{RequestsPerMinute: 5, Burst: 1},

		UniswapRouterAddress: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
		WETHAddress:          "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		QuoteTokenAddress:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		QuoteTokenDecimals:   6,

		CachePolicies: cache.DefaultPolicies(),
		SweepSchedule: cache.DefaultSweepSchedule,

		BulkConcurrency:    8,
		HistoryStockDelay:  250 * time.Millisecond,
		HistoryCryptoDelay: 1500 * time.Millisecond,

		WarmEnabled:       true,
		WarmInterval:      time.Minute,
		SeedWindow:        24 * time.Hour,
		SnapshotRetention: 7 * 24 * time.Hour,

		AlertCooldown: 15 * time.Minute,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Secrets
	cfg.FinnhubAPIKey = envStr("FINNHUB_API_KEY", "")
	cfg.CoinGeckoAPIKey = envStr("COINGECKO_API_KEY", "")
	cfg.AlphaVantageAPIKey = envStr("ALPHA_VANTAGE_API_KEY", "")
	cfg.WebhookURL = envStr("WEBHOOK_URL", "")
	cfg.BotName = envStr("BOT_NAME", cfg.BotName)
	cfg.APIKey = envStr("API_KEY", "")
	cfg.CORSAllowOrigin = envStr("CORS_ALLOW_ORIGIN", cfg.CORSAllowOrigin)

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envStr("LOG_FORMAT", cfg.LogFormat)

	// Database
	cfg.DBEnabled = envBool("DB_ENABLED", cfg.DBEnabled)
	cfg.DatabaseURL = envStr("DATABASE_URL", "")
	cfg.DBHost = envStr("DB_HOST", cfg.DBHost)
	cfg.DBPort = envInt("DB_PORT", cfg.DBPort)
	cfg.DBName = envStr("DB_NAME", cfg.DBName)
	cfg.DBUser = envStr("DB_USER", "")
	cfg.DBPassword = envStr("DB_PASSWORD", "")
	cfg.DBMaxConns = envInt("DB_MAX_CONNS", cfg.DBMaxConns)

	// Providers
	cfg.Finnhub.APIKey = cfg.FinnhubAPIKey
	cfg.CoinGecko.APIKey = cfg.CoinGeckoAPIKey
	cfg.AlphaVantage.APIKey = cfg.AlphaVantageAPIKey
	cfg.Finnhub.RequestsPerMinute = envInt("FINNHUB_RPM", cfg.Finnhub.RequestsPerMinute)
	cfg.CoinGecko.RequestsPerMinute = envInt("COINGECKO_RPM", cfg.CoinGecko.RequestsPerMinute)
	cfg.AlphaVantage.RequestsPerMinute = envInt("ALPHA_VANTAGE_RPM", cfg.AlphaVantage.RequestsPerMinute)
	cfg.Yahoo.RequestsPerMinute = envInt("YAHOO_RPM", cfg.Yahoo.RequestsPerMinute)

	// Blockchain
	cfg.EthRPCURL = envStr("ETH_RPC_URL", "")
	cfg.UniswapRouterAddress = envStr("UNISWAP_ROUTER_ADDRESS", cfg.UniswapRouterAddress)
	cfg.WETHAddress = envStr("WETH_ADDRESS", cfg.WETHAddress)
	cfg.QuoteTokenAddress = envStr("QUOTE_TOKEN_ADDRESS", cfg.QuoteTokenAddress)
	cfg.QuoteTokenDecimals = envInt("QUOTE_TOKEN_DECIMALS", cfg.QuoteTokenDecimals)

	// Cache, quotes, history
	cfg.SweepSchedule = envStr("CACHE_SWEEP_SCHEDULE", cfg.SweepSchedule)
	cfg.BulkConcurrency = envInt("BULK_CONCURRENCY", cfg.BulkConcurrency)
	cfg.HistoryStockDelay = envDuration("HISTORY_STOCK_DELAY", cfg.HistoryStockDelay)
	cfg.HistoryCryptoDelay = envDuration("HISTORY_CRYPTO_DELAY", cfg.HistoryCryptoDelay)

	// Warmer
	cfg.WarmEnabled = envBool("WARM_ENABLED", cfg.WarmEnabled)
	cfg.WarmInterval = envDuration("WARM_INTERVAL", cfg.WarmInterval)
	cfg.SeedWindow = envDuration("SEED_WINDOW", cfg.SeedWindow)
	cfg.SnapshotRetention = envDuration("SNAPSHOT_RETENTION", cfg.SnapshotRetention)

	cfg.AlertCooldown = envDuration("ALERT_COOLDOWN", cfg.AlertCooldown)

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Cache.SweepSchedule != "" {
		c.SweepSchedule = fc.Cache.SweepSchedule
	}
	for ns, p := range fc.Cache.Policies {
		c.CachePolicies[ns] = p
	}

	mergeProvider(&c.Finnhub, fc.Providers.Finnhub)
	mergeProvider(&c.CoinGecko, fc.Providers.CoinGecko)
	mergeProvider(&c.Yahoo, fc.Providers.Yahoo)
	mergeProvider(&c.AlphaVantage, fc.Providers.AlphaVantage)

	if fc.History.StockDelay > 0 {
		c.HistoryStockDelay = fc.History.StockDelay
	}
	if fc.History.CryptoDelay > 0 {
		c.HistoryCryptoDelay = fc.History.CryptoDelay
	}
	if fc.Warmer.Enabled != nil {
		c.WarmEnabled = *fc.Warmer.Enabled
	}
	if fc.Warmer.Interval > 0 {
		c.WarmInterval = fc.Warmer.Interval
	}
	if fc.Warmer.SnapshotRetention > 0 {
		c.SnapshotRetention = fc.Warmer.SnapshotRetention
	}
	return nil
}

func mergeProvider(dst, src *Provider) {
	if src == nil {
		return
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.RequestsPerMinute > 0 {
		dst.RequestsPerMinute = src.RequestsPerMinute
	}
	if src.Burst > 0 {
		dst.Burst = src.Burst
	}
	if src.Timeout > 0 {
		dst.Timeout = src.Timeout
	}
}

func (c *Config) Validate() error {
	var errs []string
	log := logrus.WithField("component", "config")

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not a log level", c.LogLevel))
	}
	for ns, p := range c.CachePolicies {
		if p.Fresh <= 0 || p.HardExpiry <= p.Fresh {
			errs = append(errs, fmt.Sprintf("cache policy %s: fresh must be positive and below hard expiry", ns))
		}
	}
	if c.BulkConcurrency <= 0 {
		errs = append(errs, "BULK_CONCURRENCY must be positive")
	}
	if c.HistoryStockDelay < 0 || c.HistoryCryptoDelay < 0 {
		errs = append(errs, "history delays must not be negative")
	}

	if c.FinnhubAPIKey == "" {
		log.Warn("FINNHUB_API_KEY not set, stock quotes will only come from cache")
	}
	if c.AlphaVantageAPIKey == "" {
		log.Warn("ALPHA_VANTAGE_API_KEY not set, search falls back to the built-in list")
	}
	if c.APIKey == "" {
		log.Warn("API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func (c *Config) Print() {
	fmt.Println("=== Price Service Configuration ===")
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Printf("Log: %s (%s)\n", c.LogLevel, c.LogFormat)
	fmt.Println("--------------------------------------")
	fmt.Println("Providers:")
	fmt.Printf("  Finnhub: %s (%d/min)\n", boolLabel(c.FinnhubAPIKey != "", "configured", "no key"), c.Finnhub.RequestsPerMinute)
	fmt.Printf("  CoinGecko: %s (%d/min)\n", boolLabel(c.CoinGeckoAPIKey != "", "demo key", "public"), c.CoinGecko.RequestsPerMinute)
	fmt.Printf("  Yahoo: public (%d/min)\n", c.Yahoo.RequestsPerMinute)
	fmt.Printf("  Alpha Vantage: %s (%d/min)\n", boolLabel(c.AlphaVantageAPIKey != "", "configured", "no key"), c.AlphaVantage.RequestsPerMinute)
	fmt.Printf("  Uniswap ETH fallback: %s\n", boolLabel(c.EthRPCURL != "", "on", "off"))
	fmt.Println("--------------------------------------")
	fmt.Println("Cache:")
	for _, ns := range []cache.Namespace{cache.Stocks, cache.Crypto, cache.Search, cache.StockHistory, cache.CryptoHistory} {
		if p, ok := c.CachePolicies[ns]; ok {
			fmt.Printf("  %-15s fresh %-8s expire %s\n", ns, p.Fresh, p.HardExpiry)
		}
	}
	fmt.Printf("  Sweep: %s\n", c.SweepSchedule)
	fmt.Println("--------------------------------------")
	fmt.Printf("Database: %s\n", boolLabel(c.DBEnabled, "enabled", "disabled"))
	fmt.Printf("Warmer: %s\n", boolLabel(c.WarmEnabled && c.DBEnabled, "every "+c.WarmInterval.String(), "off"))
	fmt.Printf("Webhook alerts: %s\n", boolLabel(c.WebhookURL != "", "on", "off"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
