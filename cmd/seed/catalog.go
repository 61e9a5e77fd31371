package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/marketplace-backend/internal/services"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Users    []catalogUser    `yaml:"users"`
	Products []catalogProduct `yaml:"products"`
}

type catalogUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

// Price is a string so YAML never routes it through float64.
type catalogProduct struct {
	Title          string `yaml:"title"`
	Price          string `yaml:"price"`
	InventoryCount int    `yaml:"inventory_count"`
	Category       string `yaml:"category"`
	Description    string `yaml:"description"`
	Seller         string `yaml:"seller"`
}

func loadCatalog(path string) (*catalogFile, error) {
	raw := defaultCatalog
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*catalogFile, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &f, nil
}

func (f *catalogFile) items() ([]services.CatalogItem, error) {
	out := make([]services.CatalogItem, 0, len(f.Products))
	for _, p := range f.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid price %q: %w", p.Title, p.Price, err)
		}
		out = append(out, services.CatalogItem{
			Title:          p.Title,
			Price:          price,
			InventoryCount: p.InventoryCount,
			Category:       p.Category,
			Description:    p.Description,
			Seller:         p.Seller,
		})
	}
	return out, nil
}
