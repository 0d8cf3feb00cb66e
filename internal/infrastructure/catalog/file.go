package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/listcart/backend/internal/domain"
)

type seedFile struct {
	Products []productDTO `yaml:"products"`
}

// FileRepository serves a read-only catalog loaded once from a YAML seed file
type FileRepository struct {
	products []domain.CatalogProduct
	byID     map[string]int
}

// NewFileRepository loads the catalog at path
func NewFileRepository(path string) (*FileRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return LoadFileRepository(f)
}

// LoadFileRepository parses a YAML seed document
func LoadFileRepository(r io.Reader) (*FileRepository, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	return NewStaticRepository(MapToCatalogProducts(seed.Products)), nil
}

// NewStaticRepository wraps an in-memory product list
func NewStaticRepository(products []domain.CatalogProduct) *FileRepository {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}
	return &FileRepository{products: products, byID: byID}
}

// Products returns every product in the file, inactive ones included
func (r *FileRepository) Products() []domain.CatalogProduct {
	return r.products
}

// ListActiveProducts returns the active products in file order
func (r *FileRepository) ListActiveProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	return activeOnly(r.products), nil
}

// GetProduct returns an active product by id
func (r *FileRepository) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	i, ok := r.byID[id]
	if !ok || !r.products[i].IsActive {
		return nil, domain.ErrProductNotFound
	}
	product := r.products[i]
	return &product, nil
}

// SearchProducts returns active products whose name contains substring
func (r *FileRepository) SearchProducts(ctx context.Context, substring string) ([]domain.CatalogProduct, error) {
	return nameContains(r.products, substring), nil
}
