package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// GramsPerTroyOunce converts troy-ounce prices to per-gram prices.
const GramsPerTroyOunce = 31.1034768

// Quote is the normalized shape returned by all providers.
type Quote struct {
	PricePerGram float64   `json:"price_per_gram"`
	Source       string    `json:"source"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Provider returns the current gold price in USD per gram.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Quote, error)
}

// FromOunce converts a USD per troy ounce price to USD per gram.
func FromOunce(perOunce float64) float64 { return perOunce / GramsPerTroyOunce }

var (
	// ErrConfiguration marks a provider that cannot run with the current settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream marks a failed or malformed upstream response.
	ErrUpstream = errors.New("upstream error")
)

// ConfigError reports a missing or invalid setting for a provider.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, ErrConfiguration, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Error is returned when an upstream answers with a non-2xx status
// or a body that cannot be normalized.
type Error struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s error %d: %v: %s", e.Provider, e.StatusCode, e.Err, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s error", e.Provider)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// Valid reports whether v is a usable price.
func Valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Misconfigured fails every call with the configured error.
// It stands in for an upstream whose credentials are missing.
type Misconfigured struct {
	ProviderName string
	Err          error
}

func (m Misconfigured) Name() string { return m.ProviderName }

func (m Misconfigured) Fetch(context.Context) (Quote, error) {
	return Quote{}, m.Err
}
