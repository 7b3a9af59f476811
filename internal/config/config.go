package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"goldcatalog/internal/provider/fixed"
)

// Provider identifiers.
const (
	ProviderGoldAPI   = "GOLDAPI"
	ProviderMetalsAPI = "METALSAPI"
)

// Missing-key policies.
const (
	PolicyFallback = "fallback"
	PolicyFail     = "fail"
)

type Server struct {
	Port               string `json:"port"`
	RequestTimeoutSec  int    `json:"request_timeout_sec"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec"`
}

type Gold struct {
	Provider          string `json:"provider"`
	GoldAPIKey        string `json:"goldapi_key"`
	GoldAPIEndpoint   string `json:"goldapi_endpoint"`
	MetalsAPIKey      string `json:"metals_api_key"`
	MetalsAPIEndpoint string `json:"metals_api_endpoint"`
	// FixedPricePerGram bypasses every upstream and the cache when set.
	FixedPricePerGram   *float64 `json:"fixed_price_per_gram"`
	DefaultPricePerGram float64  `json:"default_price_per_gram"`
	// MissingKeyPolicy is "fallback", "fail" or empty for the provider's own default.
	MissingKeyPolicy      string `json:"missing_key_policy"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	Burst                 int    `json:"burst"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	DisableTLSVerify      bool   `json:"disable_tls_verify"`
}

type Catalog struct {
	ProductsFile string `json:"products_file"`
}

type Config struct {
	Server  Server  `json:"server"`
	Gold    Gold    `json:"gold"`
	Catalog Catalog `json:"catalog"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "4000", RequestTimeoutSec: 10, ShutdownTimeoutSec: 5},
		Gold: Gold{
			Provider:            ProviderGoldAPI,
			GoldAPIEndpoint:     "https://www.goldapi.io",
			MetalsAPIEndpoint:   "https://metals-api.com",
			DefaultPricePerGram: fixed.DefaultPricePerGram,
			CacheTTLSeconds:     300,
			Burst:               1,
		},
		Catalog: Catalog{ProductsFile: "products.json"},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. A .env file in the working directory is loaded next,
// then environment variables override the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	cfg.Gold.Provider = NormalizeProvider(cfg.Gold.Provider)
	cfg.Gold.MissingKeyPolicy = strings.ToLower(strings.TrimSpace(cfg.Gold.MissingKeyPolicy))
	return cfg, cfg.Validate()
}

// NormalizeProvider makes provider identifiers case-insensitive.
func NormalizeProvider(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("config: empty port")
	}
	switch c.Gold.MissingKeyPolicy {
	case "", PolicyFallback, PolicyFail:
	default:
		return fmt.Errorf("config: unknown missing key policy %q", c.Gold.MissingKeyPolicy)
	}
	if c.Gold.FixedPricePerGram != nil && !finite(*c.Gold.FixedPricePerGram) {
		return errors.New("config: fixed price per gram must be a finite number")
	}
	if c.Catalog.ProductsFile == "" {
		return errors.New("config: empty products file")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if x, ok := envInt("SHUTDOWN_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.ShutdownTimeoutSec = x
	}

	if v := os.Getenv("PROVIDER"); v != "" {
		cfg.Gold.Provider = v
	}
	if v := os.Getenv("GOLDAPI_KEY"); v != "" {
		cfg.Gold.GoldAPIKey = v
	}
	if v := os.Getenv("GOLDAPI_ENDPOINT"); v != "" {
		cfg.Gold.GoldAPIEndpoint = v
	}
	if v := os.Getenv("METALS_API_KEY"); v != "" {
		cfg.Gold.MetalsAPIKey = v
	}
	if v := os.Getenv("METALS_API_ENDPOINT"); v != "" {
		cfg.Gold.MetalsAPIEndpoint = v
	}
	// An unparseable override is ignored, as if it were unset.
	if v := os.Getenv("GOLD_PRICE_PER_GRAM"); v != "" {
		if x, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && finite(x) {
			cfg.Gold.FixedPricePerGram = &x
		}
	}
	if v := os.Getenv("GOLD_DEFAULT_PRICE_PER_GRAM"); v != "" {
		if x, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && finite(x) && x > 0 {
			cfg.Gold.DefaultPricePerGram = x
		}
	}
	if v := os.Getenv("GOLD_MISSING_KEY_POLICY"); v != "" {
		cfg.Gold.MissingKeyPolicy = v
	}
	if x, ok := envInt("GOLD_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Gold.CacheTTLSeconds = x
	}
	if x, ok := envInt("GOLD_MAX_RPM"); ok && x >= 0 {
		cfg.Gold.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("GOLD_BURST"); ok && x > 0 {
		cfg.Gold.Burst = x
	}
	if x, ok := envInt("GOLD_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Gold.MinRequestIntervalSec = x
	}
	if v := os.Getenv("DISABLE_TLS_VERIFY"); v != "" {
		cfg.Gold.DisableTLSVerify = parseBool(v)
	}

	if v := os.Getenv("PRODUCTS_FILE"); v != "" {
		cfg.Catalog.ProductsFile = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
