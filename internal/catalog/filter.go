package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names.
const (
	ParamPriceMin = "price_min"
	ParamPriceMax = "price_max"
	ParamPopMin   = "pop_min"
	ParamPopMax   = "pop_max"
)

// Filters are inclusive bounds; nil means unbounded.
type Filters struct {
	PriceMin *float64
	PriceMax *float64
	PopMin   *float64
	PopMax   *float64
}

// ParseFilters reads the bounds from q. Absent, empty or unparseable
// values leave that bound open.
func ParseFilters(q url.Values) Filters {
	return Filters{
		PriceMin: bound(q.Get(ParamPriceMin)),
		PriceMax: bound(q.Get(ParamPriceMax)),
		PopMin:   bound(q.Get(ParamPopMin)),
		PopMax:   bound(q.Get(ParamPopMax)),
	}
}

func bound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Match reports whether p lies within every set bound.
func (f Filters) Match(p EnrichedProduct) bool {
	if f.PriceMin != nil && p.PriceUSD < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.PriceUSD > *f.PriceMax {
		return false
	}
	if f.PopMin != nil && p.PopularityOutOf5 < *f.PopMin {
		return false
	}
	if f.PopMax != nil && p.PopularityOutOf5 > *f.PopMax {
		return false
	}
	return true
}

// Apply keeps matching products in their original order.
// The result is never nil.
func (f Filters) Apply(products []EnrichedProduct) []EnrichedProduct {
	out := make([]EnrichedProduct, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
