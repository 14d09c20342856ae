package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

// Catalog is the static product catalog ads are drawn from. Users never
// create catalog entries; they only rate, save, and convert them.
type Catalog struct {
	products []models.Product
	byID     map[string]models.Product
}

func newCatalog(products []models.Product) *Catalog {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// FromBytes parses a catalog from raw JSON bytes.
// This supports loading from embedded data via go:embed.
func FromBytes(data []byte) (*Catalog, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return newCatalog(products), nil
}

// FromFile loads the catalog from the specified JSON file.
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return FromBytes(data)
}

// Products returns the full catalog in order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ProductByID resolves a full product, commercial fields included.
func (c *Catalog) ProductByID(id string) (models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.products)
}

// SeedAds returns the first n catalog entries as plain Ads, commercial
// fields stripped. The ads history must never carry price or commission.
func (c *Catalog) SeedAds(n int) []models.Ad {
	if n > len(c.products) {
		n = len(c.products)
	}
	ads := make([]models.Ad, 0, n)
	for _, p := range c.products[:n] {
		ads = append(ads, p.Ad)
	}
	return ads
}
