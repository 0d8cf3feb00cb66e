package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/listcart/backend/internal/domain"
)

const sessionKeyPrefix = "session:"

// SessionStore persists reconciliation sessions as JSON in any cache backend
type SessionStore struct {
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewSessionStore creates a session store. Every save refreshes the TTL.
func NewSessionStore(cache domain.CacheRepository, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

// Get loads a session by id
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

// Save stores a session snapshot
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl)
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}
