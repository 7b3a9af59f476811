package factory

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"goldcatalog/internal/config"
	"goldcatalog/internal/provider"
	"goldcatalog/internal/provider/cache"
	"goldcatalog/internal/provider/fixed"
	"goldcatalog/internal/provider/goldapi"
	"goldcatalog/internal/provider/metalsapi"
	"goldcatalog/internal/provider/ratelimit"
)

// HTTPClient is satisfied by *httpx.Client and by the upstream mocks.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Build returns the price provider selected by cfg, decorated with the
// upstream guard and the cache. A fixed override short-circuits everything.
func Build(cfg config.Gold, hc HTTPClient, logger *log.Logger) provider.Provider {
	if cfg.FixedPricePerGram != nil {
		logger.Printf("using fixed gold price %g USD/gram", *cfg.FixedPricePerGram)
		return fixed.New(*cfg.FixedPricePerGram, "fixed")
	}

	var upstream provider.Provider
	switch cfg.Provider {
	case config.ProviderGoldAPI:
		if cfg.GoldAPIKey == "" {
			return missingKey(cfg, goldapi.Name, "GOLDAPI_KEY", config.PolicyFallback, logger)
		}
		upstream = goldapi.New(cfg.GoldAPIKey,
			goldapi.WithHTTPClient(hc),
			goldapi.WithBaseURL(cfg.GoldAPIEndpoint),
		)
	case config.ProviderMetalsAPI:
		if cfg.MetalsAPIKey == "" {
			return missingKey(cfg, metalsapi.Name, "METALS_API_KEY", config.PolicyFail, logger)
		}
		upstream = metalsapi.New(cfg.MetalsAPIKey,
			metalsapi.WithHTTPClient(hc),
			metalsapi.WithBaseURL(cfg.MetalsAPIEndpoint),
		)
	default:
		logger.Printf("warning: unknown provider %q; using default price %g USD/gram", cfg.Provider, cfg.DefaultPricePerGram)
		return fixed.New(cfg.DefaultPricePerGram, "default")
	}

	p := upstream
	if cfg.MaxRequestsPerMinute > 0 {
		p = &ratelimit.Guard{P: p, L: ratelimit.PerMinute(cfg.MaxRequestsPerMinute, cfg.Burst)}
	} else if cfg.MinRequestIntervalSec > 0 {
		p = &ratelimit.Guard{P: p, L: &ratelimit.Interval{Every: time.Duration(cfg.MinRequestIntervalSec) * time.Second}}
	}
	if cfg.CacheTTLSeconds > 0 {
		p = cache.New(p, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	logger.Printf("gold price provider %s (cache ttl %ds)", upstream.Name(), cfg.CacheTTLSeconds)
	return p
}

// missingKey applies the missing-key policy. Each provider keeps its own
// default unless cfg.MissingKeyPolicy sets one for all of them.
func missingKey(cfg config.Gold, name, env, policy string, logger *log.Logger) provider.Provider {
	if cfg.MissingKeyPolicy != "" {
		policy = cfg.MissingKeyPolicy
	}
	if policy == config.PolicyFallback {
		logger.Printf("warning: %s not set. Falling back to default price %g USD/gram.", env, cfg.DefaultPricePerGram)
		return fixed.New(cfg.DefaultPricePerGram, "default")
	}
	logger.Printf("warning: %s not set; every price request will fail", env)
	return provider.Misconfigured{
		ProviderName: name,
		Err:          &provider.ConfigError{Provider: name, Reason: fmt.Sprintf("%s env var not set", env)},
	}
}
