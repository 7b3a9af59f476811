package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"goldcatalog/internal/catalog"
	"goldcatalog/internal/config"
	"goldcatalog/internal/httpx"
	"goldcatalog/internal/provider/factory"
)

func main() {
	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags|log.LUTC)
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(args []string, stdout io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath   string
		providerID   string
		products     bool
		productsFile string
		timeout      int
		filters      = url.Values{}
	)
	fs.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	fs.StringVar(&providerID, "provider", "", "price provider: GOLDAPI or METALSAPI (overrides PROVIDER)")
	fs.BoolVar(&products, "products", false, "print the priced catalog instead of the price only")
	fs.StringVar(&productsFile, "products-file", "", "catalog path (overrides PRODUCTS_FILE)")
	fs.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides REQUEST_TIMEOUT_SEC)")
	for _, name := range []string{catalog.ParamPriceMin, catalog.ParamPriceMax, catalog.ParamPopMin, catalog.ParamPopMax} {
		fs.Func(flagName(name), "inclusive bound for "+name, func(v string) error {
			filters.Set(name, v)
			return nil
		})
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if providerID != "" {
		cfg.Gold.Provider = config.NormalizeProvider(providerID)
	}
	if productsFile != "" {
		cfg.Catalog.ProductsFile = productsFile
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	// A one-shot run never benefits from the cache.
	cfg.Gold.CacheTTLSeconds = 0

	d := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	hc := httpx.New(httpx.Options{Timeout: d, InsecureSkipVerify: cfg.Gold.DisableTLSVerify})
	prices := factory.Build(cfg.Gold, hc, logger)

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	var out any
	if products {
		items, err := catalog.Load(cfg.Catalog.ProductsFile)
		if err != nil {
			return err
		}
		listing, err := catalog.NewService(items, prices).List(ctx, catalog.ParseFilters(filters))
		if err != nil {
			return err
		}
		out = listing
	} else {
		q, err := prices.Fetch(ctx)
		if err != nil {
			return err
		}
		out = struct {
			GoldPricePerGram float64 `json:"goldPricePerGram"`
			Source           string  `json:"source"`
		}{catalog.Round(q.PricePerGram, 4), q.Source}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// flagName turns price_min into price-min.
func flagName(param string) string { return strings.ReplaceAll(param, "_", "-") }
