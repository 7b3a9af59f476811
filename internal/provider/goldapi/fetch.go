package goldapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goldcatalog/internal/provider"
)

// spotResponse is the subset of the XAU/USD payload we use, e.g.
//
//	{"metal":"XAU","currency":"USD","price":2000.12,"unit":"oz_t"}
type spotResponse struct {
	Price        *provider.Number `json:"price"`
	Unit         string           `json:"unit"`
	PricePerGram *provider.Number `json:"price_per_gram"`
}

// Fetch retrieves the XAU/USD spot price and normalizes it to USD per gram.
func (c *Client) Fetch(ctx context.Context) (provider.Quote, error) {
	url := fmt.Sprintf("%s/api/XAU/USD", strings.TrimRight(c.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	var body spotResponse
	if err := provider.DecodeResponse(Name, res, &body); err != nil {
		return provider.Quote{}, err
	}

	perGram, err := body.perGram()
	if err != nil {
		return provider.Quote{}, &provider.Error{Provider: Name, Err: err}
	}
	return provider.Quote{PricePerGram: perGram, Source: Name, ReceivedAt: time.Now().UTC()}, nil
}

// perGram applies the unit rules: an "oz" unit means per troy ounce,
// otherwise price_per_gram wins when present, otherwise price is per ounce.
func (r spotResponse) perGram() (float64, error) {
	var v float64
	switch {
	case strings.Contains(strings.ToLower(r.Unit), "oz"):
		if r.Price == nil {
			return 0, errors.New("missing price")
		}
		v = provider.FromOunce(float64(*r.Price))
	case r.PricePerGram != nil && *r.PricePerGram != 0:
		v = float64(*r.PricePerGram)
	case r.Price != nil:
		v = provider.FromOunce(float64(*r.Price))
	default:
		return 0, errors.New("missing price")
	}
	if !provider.Valid(v) {
		return 0, fmt.Errorf("invalid price %v", v)
	}
	return v, nil
}
