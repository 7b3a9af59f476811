package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"goldcatalog/internal/catalog"
	"goldcatalog/internal/config"
	"goldcatalog/internal/httpserver"
	"goldcatalog/internal/httpx"
	"goldcatalog/internal/provider/factory"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("API listening on %s (PROVIDER=%s)", cfg.Server.Port, cfg.Gold.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
		logger.Printf("shutting down")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

// newServer loads the catalog once and wires the price provider into the API.
func newServer(cfg config.Config, logger *log.Logger) (*httpserver.Server, error) {
	products, err := catalog.Load(cfg.Catalog.ProductsFile)
	if err != nil {
		return nil, err
	}
	logger.Printf("loaded %d products from %s", len(products), cfg.Catalog.ProductsFile)

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	if cfg.Gold.DisableTLSVerify {
		logger.Println("warning: TLS verification disabled for upstream price providers")
	}
	hc := httpx.New(httpx.Options{Timeout: timeout, InsecureSkipVerify: cfg.Gold.DisableTLSVerify})

	prices := factory.Build(cfg.Gold, hc, logger)
	svc := catalog.NewService(products, prices)
	return httpserver.New(fmt.Sprintf(":%s", cfg.Server.Port), logger, svc, timeout), nil
}
