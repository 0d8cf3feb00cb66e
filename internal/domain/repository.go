package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for byte-oriented caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository is the read-only catalog collaborator
type CatalogRepository interface {
	ListActiveProducts(ctx context.Context) ([]CatalogProduct, error)
	GetProduct(ctx context.Context, id string) (*CatalogProduct, error)
	SearchProducts(ctx context.Context, substring string) ([]CatalogProduct, error)
}

// OCRClient turns document bytes into raw text. It may block for seconds.
type OCRClient interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Cart is the write-only cart sink used when a reconciliation is committed
type Cart interface {
	AddItem(ctx context.Context, userID string, item CartItem) error
}

// SessionRepository persists reconciliation sessions for the duration of a review
type SessionRepository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
