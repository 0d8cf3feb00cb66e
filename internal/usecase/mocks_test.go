package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/listcart/backend/internal/domain"
)

// MockCatalog is a hand-written domain.CatalogRepository
type MockCatalog struct {
	products  []domain.CatalogProduct
	listErr   error
	getErr    error
	searchErr error

	// block, when set, is received from before SearchProducts returns
	block chan struct{}
	// entered, when set, is signalled when SearchProducts starts
	entered chan struct{}

	mu          sync.Mutex
	searchCalls []string
}

func NewMockCatalog(products ...domain.CatalogProduct) *MockCatalog {
	return &MockCatalog{products: products}
}

func (m *MockCatalog) ListActiveProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	active := []domain.CatalogProduct{}
	for _, p := range m.products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *MockCatalog) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.products {
		if p.ID == id && p.IsActive {
			product := p
			return &product, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockCatalog) SearchProducts(ctx context.Context, substring string) ([]domain.CatalogProduct, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, substring)
	m.mu.Unlock()

	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	found := []domain.CatalogProduct{}
	for _, p := range m.products {
		if p.IsActive && strings.Contains(strings.ToLower(p.Name), strings.ToLower(substring)) {
			found = append(found, p)
		}
	}
	return found, nil
}

// MockSessions is an in-memory domain.SessionRepository
type MockSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveErr  error
}

func NewMockSessions() *MockSessions {
	return &MockSessions{sessions: make(map[string]domain.Session)}
}

func (m *MockSessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *MockSessions) Save(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MockSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// MockCart records added items and can fail for chosen products
type MockCart struct {
	mu       sync.Mutex
	added    []domain.CartItem
	failFor  map[string]error
	userSeen string
}

func NewMockCart() *MockCart {
	return &MockCart{failFor: map[string]error{}}
}

func (m *MockCart) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userSeen = userID
	if err, ok := m.failFor[item.ProductID]; ok {
		return err
	}
	m.added = append(m.added, item)
	return nil
}

// MockOCR is a scripted domain.OCRClient
type MockOCR struct {
	text   string
	err    error
	wait   bool
	called int
}

func (m *MockOCR) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	m.called++
	if m.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.err
}

// testCatalog is the grocery catalog shared by the pipeline tests
func testCatalog() []domain.CatalogProduct {
	return []domain.CatalogProduct{
		{
			ID: "p-apple", Name: "Apple", BasePrice: 80, IsActive: true,
			Variants: []domain.Variant{{Name: "1kg", Price: 50, Stock: 10}, {Name: "2kg", Price: 90, Stock: 5}},
		},
		{
			ID: "p-milk", Name: "Milk", BasePrice: 30, IsActive: true,
			Variants:       []domain.Variant{{Name: "500ml", Price: 25, Stock: 20}, {Name: "1L", Price: 48, Stock: 20}},
			SearchKeywords: []string{"doodh"},
		},
		{ID: "p-banana", Name: "Banana", BasePrice: 40, Stock: 0, IsActive: true},
		{ID: "p-pineapple", Name: "Pineapple", BasePrice: 60, Stock: 8, IsActive: true},
		{
			ID: "p-rice", Name: "Rice", BasePrice: 70, IsActive: true,
			Variants: []domain.Variant{{Name: "5kg", Price: 300, Stock: 2}},
		},
		{ID: "p-old-apple", Name: "Apple", BasePrice: 10, IsActive: false},
	}
}
