package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listcart/backend/internal/domain"
)

// ReconciliationService drives confirmation sessions: it runs the matcher,
// stores snapshots, applies reducer events and talks to the catalog and cart.
type ReconciliationService struct {
	matcher  *MatchingService
	catalog  domain.CatalogRepository
	sessions domain.SessionRepository
	cart     domain.Cart
	logger   zerolog.Logger
	now      func() time.Time

	locks    *keyedMutex
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewReconciliationService creates a new reconciliation service with dependencies
func NewReconciliationService(
	matcher *MatchingService,
	catalog domain.CatalogRepository,
	sessions domain.SessionRepository,
	cart domain.Cart,
	logger zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		matcher:  matcher,
		catalog:  catalog,
		sessions: sessions,
		cart:     cart,
		logger:   logger.With().Str("component", "reconciler").Logger(),
		now:      time.Now,
		locks:    newKeyedMutex(),
		inFlight: make(map[string]struct{}),
	}
}

// Start matches the lines and opens a new session in the reviewing state
func (s *ReconciliationService) Start(ctx context.Context, userID string, lines []string) (*domain.Session, error) {
	result, err := s.matcher.Match(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		State:          domain.StateReviewing,
		MatchedItems:   result.MatchedItems,
		UnmatchedLines: result.UnmatchedLines,
		Total:          result.Total,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().
		Str("session", session.ID).
		Str("user", userID).
		Int("matched", len(session.MatchedItems)).
		Int("unmatched", len(session.UnmatchedLines)).
		Msg("reconciliation started")

	return session, nil
}

// Get returns the current snapshot of a session owned by userID
func (s *ReconciliationService) Get(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.load(ctx, userID, sessionID)
}

// EditQuantity changes the quantity of a matched item
func (s *ReconciliationService) EditQuantity(ctx context.Context, userID, sessionID string, index, quantity int) (*domain.Session, error) {
	return s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return EditQuantity{Index: index, Quantity: quantity}, nil
	})
}

// SwapAlternative replaces a matched item with its alternative at altIndex
func (s *ReconciliationService) SwapAlternative(ctx context.Context, userID, sessionID string, index, altIndex int) (*domain.Session, error) {
	return s.apply(ctx, userID, sessionID, func(cur domain.Session) (Event, error) {
		if !inRange(index, len(cur.MatchedItems)) {
			return nil, fmt.Errorf("%w: matched item %d", domain.ErrIndexOutOfRange, index)
		}
		alts := cur.MatchedItems[index].Alternatives
		if !inRange(altIndex, len(alts)) {
			return nil, fmt.Errorf("%w: alternative %d", domain.ErrIndexOutOfRange, altIndex)
		}
		return SwapAlternative{Index: index, Alternative: alts[altIndex]}, nil
	})
}

// RemoveMatched moves a matched item back to the unmatched lines
func (s *ReconciliationService) RemoveMatched(ctx context.Context, userID, sessionID string, index int) (*domain.Session, error) {
	return s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return RemoveMatched{Index: index}, nil
	})
}

// SkipUnmatched drops an unmatched line
func (s *ReconciliationService) SkipUnmatched(ctx context.Context, userID, sessionID string, index int) (*domain.Session, error) {
	return s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return SkipUnmatched{Index: index}, nil
	})
}

// ManualResolve looks the typed name up in the catalog and, on success,
// matches the unmatched line to the first product whose name contains it.
// The session is left untouched when nothing is found.
func (s *ReconciliationService) ManualResolve(ctx context.Context, userID, sessionID string, index int, typedName string) (*domain.Session, error) {
	typed := strings.TrimSpace(typedName)
	if typed == "" {
		return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidRequest)
	}

	return s.resolve(ctx, userID, sessionID, index, func(ctx context.Context, line domain.UnmatchedLine) (ResolveUnmatched, error) {
		products, err := s.catalog.SearchProducts(ctx, typed)
		if err != nil {
			return ResolveUnmatched{}, lookupError(err)
		}
		needle := strings.ToLower(typed)
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				return ResolveUnmatched{LineID: line.ID, Product: p, Confidence: 1, ItemName: typed}, nil
			}
		}
		return ResolveUnmatched{}, fmt.Errorf("%w: %q", domain.ErrProductNotFound, typed)
	})
}

// AcceptSuggestion fetches the suggested product and matches the unmatched line to it
func (s *ReconciliationService) AcceptSuggestion(ctx context.Context, userID, sessionID string, index, suggestionIndex int) (*domain.Session, error) {
	return s.resolve(ctx, userID, sessionID, index, func(ctx context.Context, line domain.UnmatchedLine) (ResolveUnmatched, error) {
		if !inRange(suggestionIndex, len(line.SearchResults)) {
			return ResolveUnmatched{}, fmt.Errorf("%w: suggestion %d", domain.ErrIndexOutOfRange, suggestionIndex)
		}
		suggestion := line.SearchResults[suggestionIndex]
		product, err := s.catalog.GetProduct(ctx, suggestion.ProductID)
		if err != nil {
			return ResolveUnmatched{}, lookupError(err)
		}
		return ResolveUnmatched{
			LineID:     line.ID,
			Product:    *product,
			Confidence: suggestion.Confidence,
			ItemName:   line.ItemName,
		}, nil
	})
}

// Commit closes the session and adds every matched item to the user's cart.
// Cart failures are reported per item and do not stop the remaining items.
func (s *ReconciliationService) Commit(ctx context.Context, userID, sessionID string) (*domain.CommitResult, error) {
	session, err := s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return Commit{}, nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.CommitResult{
		Cart:   ReconciledCartFrom(*session),
		Failed: []domain.CommitFailure{},
	}

	for _, item := range result.Cart.Items {
		err := s.cart.AddItem(ctx, userID, domain.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("session", sessionID).Str("product", item.ProductID).Msg("cart add failed")
			result.Failed = append(result.Failed, domain.CommitFailure{
				ProductID: item.ProductID,
				Name:      item.Name,
				Reason:    err.Error(),
			})
			continue
		}
		result.Added++
	}

	s.logger.Info().
		Str("session", sessionID).
		Int("added", result.Added).
		Int("failed", len(result.Failed)).
		Float64("total", result.Cart.Total).
		Msg("reconciliation committed")

	return result, nil
}

// Cancel closes the session without touching the cart
func (s *ReconciliationService) Cancel(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return Cancel{}, nil
	})
}

// apply loads the session under its lock, derives an event from the current
// snapshot, reduces and saves.
func (s *ReconciliationService) apply(
	ctx context.Context,
	userID, sessionID string,
	build func(domain.Session) (Event, error),
) (*domain.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cur, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if cur.State.Terminal() {
		return nil, domain.ErrSessionClosed
	}

	event, err := build(*cur)
	if err != nil {
		return nil, err
	}

	next, err := Reduce(*cur, event)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	if err := s.sessions.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Debug().
		Str("session", sessionID).
		Str("event", EventName(event)).
		Int("version", next.Version).
		Msg("transition applied")

	return &next, nil
}

// resolve runs a catalog lookup for one unmatched line outside the session
// lock. A second lookup for the same line while one runs is rejected.
func (s *ReconciliationService) resolve(
	ctx context.Context,
	userID, sessionID string,
	index int,
	lookup func(context.Context, domain.UnmatchedLine) (ResolveUnmatched, error),
) (*domain.Session, error) {
	line, err := s.claimLine(ctx, userID, sessionID, index)
	if err != nil {
		return nil, err
	}
	key := inFlightKey(sessionID, line.ID)
	defer s.release(key)

	event, err := lookup(ctx, line)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, userID, sessionID, func(domain.Session) (Event, error) {
		return event, nil
	})
}

func (s *ReconciliationService) claimLine(ctx context.Context, userID, sessionID string, index int) (domain.UnmatchedLine, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cur, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return domain.UnmatchedLine{}, err
	}
	if cur.State.Terminal() {
		return domain.UnmatchedLine{}, domain.ErrSessionClosed
	}
	if !inRange(index, len(cur.UnmatchedLines)) {
		return domain.UnmatchedLine{}, fmt.Errorf("%w: unmatched line %d", domain.ErrIndexOutOfRange, index)
	}

	line := cur.UnmatchedLines[index]

	key := inFlightKey(sessionID, line.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return domain.UnmatchedLine{}, domain.ErrTransitionInFlight
	}
	s.inFlight[key] = struct{}{}
	return line, nil
}

func (s *ReconciliationService) release(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

// inFlightKey scopes a line to its session; line ids repeat across sessions built from the same list
func inFlightKey(sessionID, lineID string) string {
	return sessionID + "/" + lineID
}

func (s *ReconciliationService) load(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		// Sessions of other users are indistinguishable from missing ones
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// lookupError keeps not-found distinct from collaborator outages
func lookupError(err error) error {
	if errors.Is(err, domain.ErrProductNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
}

// keyedMutex serializes work per key and forgets keys nobody holds
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex for key and returns its unlock func
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
