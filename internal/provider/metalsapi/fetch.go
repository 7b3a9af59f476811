package metalsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goldcatalog/internal/provider"
)

// latestResponse covers both payload shapes, e.g.
//
//	{"success":true,"base":"USD","rates":{"XAU":0.000482},"unit":"per troy ounce"}
//	{"price":2074.5}
type latestResponse struct {
	Success *bool                      `json:"success"`
	Error   *apiError                  `json:"error"`
	Rates   map[string]provider.Number `json:"rates"`
	Price   *provider.Number           `json:"price"`
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// Fetch retrieves the latest XAU rate and normalizes it to USD per gram.
func (c *Client) Fetch(ctx context.Context) (provider.Quote, error) {
	url := fmt.Sprintf("%s/api/latest?%s", strings.TrimRight(c.baseURL, "/"), c.query.Encode())
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

	var body latestResponse
	if err := provider.DecodeResponse(Name, res, &body); err != nil {
		return provider.Quote{}, err
	}
	if body.Success != nil && !*body.Success && body.Error != nil {
		return provider.Quote{}, &provider.Error{
			Provider: Name,
			Err:      fmt.Errorf("code=%d type=%s: %s", body.Error.Code, body.Error.Type, body.Error.Info),
		}
	}

	perGram, err := body.perGram()
	if err != nil {
		return provider.Quote{}, &provider.Error{Provider: Name, Err: err}
	}
	return provider.Quote{PricePerGram: perGram, Source: Name, ReceivedAt: time.Now().UTC()}, nil
}

// perGram reads rates.XAU first. A rate in (0,1) is XAU per USD and is
// inverted; any other positive rate is already USD per ounce.
func (r latestResponse) perGram() (float64, error) {
	var perOunce float64
	if rate := float64(r.Rates["XAU"]); rate != 0 {
		perOunce = rate
		if rate > 0 && rate < 1 {
			perOunce = 1 / rate
		}
	} else if r.Price != nil {
		perOunce = float64(*r.Price)
	} else {
		return 0, errors.New("unexpected response format")
	}
	v := provider.FromOunce(perOunce)
	if !provider.Valid(v) {
		return 0, fmt.Errorf("invalid price %v", v)
	}
	return v, nil
}
