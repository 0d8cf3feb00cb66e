package domain

// Variant is a separately priced and stocked SKU under one product (e.g. "1kg" vs "2kg")
type Variant struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
	Stock int     `json:"stock" yaml:"stock"`
}

// CatalogProduct is a product as exposed by the catalog collaborator.
// Only active products participate in matching.
type CatalogProduct struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Category       string    `json:"category" yaml:"category"`
	BasePrice      float64   `json:"basePrice" yaml:"basePrice"`
	Stock          int       `json:"stock" yaml:"stock"`
	IsActive       bool      `json:"isActive" yaml:"isActive"`
	Image          string    `json:"image,omitempty" yaml:"image,omitempty"`
	Variants       []Variant `json:"variants" yaml:"variants"`
	SearchKeywords []string  `json:"searchKeywords" yaml:"searchKeywords"`
}

// CartItem is what the reconciler hands to the cart collaborator for each committed item
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Variant   string  `json:"variant"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}
