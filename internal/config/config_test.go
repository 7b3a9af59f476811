package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the caller's environment and working directory.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"PORT", "REQUEST_TIMEOUT_SEC", "SHUTDOWN_TIMEOUT_SEC", "PROVIDER",
		"GOLDAPI_KEY", "GOLDAPI_ENDPOINT", "METALS_API_KEY", "METALS_API_ENDPOINT",
		"GOLD_PRICE_PER_GRAM", "GOLD_DEFAULT_PRICE_PER_GRAM", "GOLD_MISSING_KEY_POLICY",
		"GOLD_CACHE_TTL_SEC", "GOLD_MAX_RPM", "GOLD_BURST", "GOLD_MIN_INTERVAL_SEC",
		"DISABLE_TLS_VERIFY", "PRODUCTS_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "4000", cfg.Server.Port)
	require.Equal(t, ProviderGoldAPI, cfg.Gold.Provider)
	require.Equal(t, 300, cfg.Gold.CacheTTLSeconds)
	require.InDelta(t, 80.0, cfg.Gold.DefaultPricePerGram, 0)
	require.Nil(t, cfg.Gold.FixedPricePerGram)
	require.False(t, cfg.Gold.DisableTLSVerify)
	require.Equal(t, "products.json", cfg.Catalog.ProductsFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "5000")
	t.Setenv("PROVIDER", "metalsapi")
	t.Setenv("METALS_API_KEY", "mk")
	t.Setenv("GOLD_PRICE_PER_GRAM", "61.5")
	t.Setenv("GOLD_MISSING_KEY_POLICY", "FAIL")
	t.Setenv("GOLD_CACHE_TTL_SEC", "60")
	t.Setenv("GOLD_MAX_RPM", "10")
	t.Setenv("DISABLE_TLS_VERIFY", "1")
	t.Setenv("PRODUCTS_FILE", "/data/rings.json")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "5000", cfg.Server.Port)
	require.Equal(t, ProviderMetalsAPI, cfg.Gold.Provider)
	require.Equal(t, "mk", cfg.Gold.MetalsAPIKey)
	require.NotNil(t, cfg.Gold.FixedPricePerGram)
	require.InDelta(t, 61.5, *cfg.Gold.FixedPricePerGram, 0)
	require.Equal(t, PolicyFail, cfg.Gold.MissingKeyPolicy)
	require.Equal(t, 60, cfg.Gold.CacheTTLSeconds)
	require.Equal(t, 10, cfg.Gold.MaxRequestsPerMinute)
	require.True(t, cfg.Gold.DisableTLSVerify)
	require.Equal(t, "/data/rings.json", cfg.Catalog.ProductsFile)
}

func TestLoad_InvalidFixedPriceIsIgnored(t *testing.T) {
	clearEnv(t)
	for _, v := range []string{"abc", "NaN", "Inf"} {
		t.Setenv("GOLD_PRICE_PER_GRAM", v)
		cfg, err := Load("")
		require.NoError(t, err)
		require.Nilf(t, cfg.Gold.FixedPricePerGram, "value %q", v)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":"7000"},"gold":{"provider":"metalsapi","cache_ttl_sec":30}}`), 0o600))
	t.Setenv("GOLD_CACHE_TTL_SEC", "45")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Server.Port)
	require.Equal(t, ProviderMetalsAPI, cfg.Gold.Provider)
	require.Equal(t, 45, cfg.Gold.CacheTTLSeconds)
	require.Equal(t, "https://www.goldapi.io", cfg.Gold.GoldAPIEndpoint)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// t.Setenv("X", "") leaves X set, so godotenv would not override it.
	require.NoError(t, os.Unsetenv("GOLDAPI_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("GOLDAPI_KEY") })
	require.NoError(t, os.WriteFile(".env", []byte("GOLDAPI_KEY=from-dotenv\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Gold.GoldAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")

	t.Setenv("GOLD_MISSING_KEY_POLICY", "sometimes")
	_, err = Load("")
	require.ErrorContains(t, err, "missing key policy")
}

func TestNormalizeProvider(t *testing.T) {
	t.Parallel()

	require.Equal(t, ProviderMetalsAPI, NormalizeProvider(" metalsapi "))
	require.Equal(t, ProviderGoldAPI, NormalizeProvider("GoldApi"))
	require.Empty(t, NormalizeProvider("  "))
}
