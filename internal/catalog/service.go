package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"goldcatalog/internal/provider"
)

// EnrichedProduct is a Product priced against the current gold price.
type EnrichedProduct struct {
	Product
	PriceUSD         float64 `json:"priceUsd"`
	PopularityOutOf5 float64 `json:"popularityOutOf5"`
}

// Listing is the /products response envelope.
type Listing struct {
	GoldPricePerGram float64           `json:"goldPricePerGram"`
	Count            int               `json:"count"`
	Products         []EnrichedProduct `json:"products"`
}

// Service prices the static catalog.
type Service struct {
	products []Product
	prices   provider.Provider
}

func NewService(products []Product, prices provider.Provider) *Service {
	return &Service{products: products, prices: prices}
}

// List fetches the gold price, enriches every product and applies f.
// A price failure aborts the whole listing.
func (s *Service) List(ctx context.Context, f Filters) (Listing, error) {
	q, err := s.prices.Fetch(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("fetch gold price: %w", err)
	}
	products := f.Apply(Enrich(s.products, q.PricePerGram))
	return Listing{
		GoldPricePerGram: Round(q.PricePerGram, 4),
		Count:            len(products),
		Products:         products,
	}, nil
}

// Enrich prices products in their original order:
//
//	priceUsd         = round2((popularityScore + 1) * weight * pricePerGram)
//	popularityOutOf5 = round1(popularityScore * 5)
func Enrich(products []Product, pricePerGram float64) []EnrichedProduct {
	out := make([]EnrichedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, EnrichedProduct{
			Product:          p,
			PriceUSD:         Round((p.PopularityScore+1)*p.Weight*pricePerGram, 2),
			PopularityOutOf5: Round(p.PopularityScore*5, 1),
		})
	}
	return out
}

// Round rounds half away from zero on the shortest decimal form of v,
// so 4.25 becomes 4.3 at one place.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
