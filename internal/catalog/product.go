package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Product is a static catalog entry. Weight is in grams and
// PopularityScore is normalized to [0,1].
type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Weight          float64           `json:"weight"`
	PopularityScore float64           `json:"popularityScore"`
	Images          map[string]string `json:"images"`
}

// Load reads the catalog file at path.
func Load(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a JSON array of products, validates every entry and fills
// missing identifiers with a name-based UUID that is stable across restarts.
func Parse(r io.Reader) ([]Product, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range products {
		p := &products[i]
		p.Name = strings.TrimSpace(p.Name)
		switch {
		case p.Name == "":
			return nil, fmt.Errorf("parse catalog: product %d: empty name", i)
		case p.Weight <= 0:
			return nil, fmt.Errorf("parse catalog: product %d (%s): weight must be positive", i, p.Name)
		case p.PopularityScore < 0 || p.PopularityScore > 1:
			return nil, fmt.Errorf("parse catalog: product %d (%s): popularity score %v outside [0,1]", i, p.Name, p.PopularityScore)
		}
		if p.ID == "" {
			p.ID = uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "product:%d:%s", i, p.Name)).String()
		}
		if p.Images == nil {
			p.Images = map[string]string{}
		}
	}
	return products, nil
}
