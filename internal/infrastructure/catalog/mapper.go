package catalog

import (
	"strings"

	"github.com/listcart/backend/internal/domain"
)

// productDTO is the storefront's product document. Seed files use the same shape.
type productDTO struct {
	ID             string       `json:"_id" yaml:"id"`
	AltID          string       `json:"id,omitempty" yaml:"-"`
	Name           string       `json:"name" yaml:"name"`
	Category       string       `json:"category" yaml:"category"`
	Price          float64      `json:"price" yaml:"price"`
	Stock          int          `json:"stock" yaml:"stock"`
	IsActive       *bool        `json:"isActive" yaml:"isActive"`
	Image          string       `json:"image" yaml:"image"`
	Variants       []variantDTO `json:"variants" yaml:"variants"`
	SearchKeywords []string     `json:"searchKeywords" yaml:"searchKeywords"`
}

type variantDTO struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
	Stock int     `json:"stock" yaml:"stock"`
}

type productListDTO struct {
	Products []productDTO `json:"products"`
}

// MapToCatalogProduct converts a storefront document into the domain product.
// Products are active unless explicitly disabled; keywords are lower-cased.
func MapToCatalogProduct(dto productDTO) domain.CatalogProduct {
	id := dto.ID
	if id == "" {
		id = dto.AltID
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}

	variants := make([]domain.Variant, 0, len(dto.Variants))
	for _, v := range dto.Variants {
		variants = append(variants, domain.Variant{Name: v.Name, Price: v.Price, Stock: v.Stock})
	}

	keywords := make([]string, 0, len(dto.SearchKeywords))
	for _, k := range dto.SearchKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	return domain.CatalogProduct{
		ID:             id,
		Name:           strings.TrimSpace(dto.Name),
		Category:       dto.Category,
		BasePrice:      dto.Price,
		Stock:          dto.Stock,
		IsActive:       active,
		Image:          dto.Image,
		Variants:       variants,
		SearchKeywords: keywords,
	}
}

// MapToCatalogProducts converts a list, preserving order
func MapToCatalogProducts(dtos []productDTO) []domain.CatalogProduct {
	products := make([]domain.CatalogProduct, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, MapToCatalogProduct(dto))
	}
	return products
}

// activeOnly filters out inactive products, preserving order
func activeOnly(products []domain.CatalogProduct) []domain.CatalogProduct {
	active := make([]domain.CatalogProduct, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// nameContains returns active products whose name contains substring, case-insensitively
func nameContains(products []domain.CatalogProduct, substring string) []domain.CatalogProduct {
	needle := strings.ToLower(strings.TrimSpace(substring))
	found := []domain.CatalogProduct{}
	for _, p := range products {
		if p.IsActive && strings.Contains(strings.ToLower(p.Name), needle) {
			found = append(found, p)
		}
	}
	return found
}
