package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listcart/backend/internal/domain"
)

// Matching defaults
const (
	DefaultMinNameLength = 2 // shortest item name worth searching for

	// DefaultSuggestionThreshold widens the search for unmatched lines so
	// the user has something to pick from.
	DefaultSuggestionThreshold = 0.85
)

// lineNamespace scopes the deterministic ids given to unmatched lines
var lineNamespace = uuid.MustParse("6f1c9a52-4b8e-4d0a-9a57-3c1f0e7d2b10")

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	IndexThreshold      float64
	SuggestionThreshold float64
	MatchThreshold      float64
	ConfirmThreshold    float64
	MinQueryLength      int
	MaxCandidates       int
	MaxAlternatives     int
	MinNameLength       int
	MinLineLength       int
}

// MatchingService runs OCR lines through extraction, fuzzy search, variant
// resolution and the confidence policy.
type MatchingService struct {
	catalog             domain.CatalogRepository
	indexOptions        IndexOptions
	suggestionThreshold float64
	policy              Policy
	minNameLength       int
	minLineLength       int
	logger              zerolog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(catalog domain.CatalogRepository, config MatchConfig, logger zerolog.Logger) *MatchingService {
	minName := config.MinNameLength
	if minName <= 0 {
		minName = DefaultMinNameLength
	}
	minLine := config.MinLineLength
	if minLine <= 0 {
		minLine = DefaultMinLineLength
	}
	suggest := config.SuggestionThreshold
	if suggest <= 0 {
		suggest = DefaultSuggestionThreshold
	}

	return &MatchingService{
		catalog: catalog,
		indexOptions: IndexOptions{
			Threshold:      config.IndexThreshold,
			MinQueryLength: config.MinQueryLength,
			MaxCandidates:  config.MaxCandidates,
		},
		suggestionThreshold: suggest,
		policy: NewPolicy(PolicyConfig{
			MatchThreshold:   config.MatchThreshold,
			ConfirmThreshold: config.ConfirmThreshold,
			MaxAlternatives:  config.MaxAlternatives,
		}),
		minNameLength: minName,
		minLineLength: minLine,
		logger:        logger.With().Str("component", "matcher").Logger(),
	}
}

// Match reads the active catalog once and matches every line against it.
// A nil lines slice is an invalid request; an empty one yields an empty result.
func (s *MatchingService) Match(ctx context.Context, lines []string) (*domain.MatchResult, error) {
	if lines == nil {
		return nil, domain.ErrInvalidRequest
	}

	products, err := s.catalog.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return s.MatchLines(ctx, lines, products)
}

// MatchLines is the pure core of Match: same lines and catalog, same result.
func (s *MatchingService) MatchLines(
	ctx context.Context,
	lines []string,
	products []domain.CatalogProduct,
) (*domain.MatchResult, error) {
	index := NewFuzzyIndex(products, s.indexOptions)

	result := &domain.MatchResult{
		MatchedItems:   []domain.MatchedItem{},
		UnmatchedLines: []domain.UnmatchedLine{},
	}

	for i, raw := range lines {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := ExtractLine(raw)
		if IsDegenerate(line.Normalized, s.minLineLength) {
			result.Summary.Noise++
			s.logger.Debug().Int("line", i).Str("text", raw).Msg("skipping noise line")
			continue
		}
		if len(line.ItemName) < s.minNameLength {
			result.Summary.Dropped++
			s.logger.Debug().Int("line", i).Str("text", raw).Msg("dropping line without item name")
			continue
		}

		candidates := index.Search(line.ItemName)

		if len(candidates) > 0 && s.policy.Accept(candidates[0].Distance) {
			item := s.buildMatchedItem(line, candidates[0], candidates[1:])
			result.MatchedItems = append(result.MatchedItems, item)
			s.logger.Debug().
				Int("line", i).
				Str("item", line.ItemName).
				Str("product", item.Name).
				Float64("confidence", item.Confidence).
				Msg("matched")
			continue
		}

		// anything the index found was too far to accept; look wider for suggestions
		suggested := index.SearchWithin(line.ItemName, s.suggestionThreshold)
		if len(suggested) < len(candidates) {
			suggested = candidates
		}

		result.UnmatchedLines = append(result.UnmatchedLines, domain.UnmatchedLine{
			ID:            LineID(fmt.Sprintf("%d:%s", i, raw)),
			Text:          raw,
			ItemName:      line.ItemName,
			Quantity:      line.Quantity,
			Unit:          line.Unit,
			SearchResults: s.suggestions(suggested),
		})
		s.logger.Debug().Int("line", i).Str("item", line.ItemName).Int("suggestions", len(suggested)).Msg("unmatched")
	}

	totals := make([]float64, len(result.MatchedItems))
	for i, item := range result.MatchedItems {
		totals[i] = item.Total
	}
	result.Total = domain.SumTotals(totals...)
	result.Summary.Matched = len(result.MatchedItems)
	result.Summary.Unmatched = len(result.UnmatchedLines)
	result.Summary.TotalItems = len(lines)

	if result.Summary.Dropped > 0 {
		s.logger.Info().Int("dropped", result.Summary.Dropped).Msg("lines dropped without item name")
	}

	return result, nil
}

// buildMatchedItem prices the winning candidate and attaches runner-ups
func (s *MatchingService) buildMatchedItem(
	line domain.ExtractedLine,
	best domain.SearchCandidate,
	runnersUp []domain.SearchCandidate,
) domain.MatchedItem {
	product := best.Product
	variant := ResolveVariant(product, line.Quantity, line.Unit)
	quantity := ClampQuantity(line.Quantity, variant.Stock)
	confidence := s.policy.Confidence(best.Distance)

	alternatives := []domain.AlternativeCandidate{}
	for _, c := range runnersUp {
		if len(alternatives) >= s.policy.MaxAlternatives() {
			break
		}
		alt := ResolveVariant(c.Product, line.Quantity, line.Unit)
		alternatives = append(alternatives, domain.AlternativeCandidate{
			ProductID:  c.Product.ID,
			Name:       c.Product.Name,
			Variant:    alt.Name,
			Price:      alt.Price,
			Image:      c.Product.Image,
			Confidence: s.policy.Confidence(c.Distance),
			Score:      c.Distance,
		})
	}

	return domain.MatchedItem{
		ProductID:            product.ID,
		Name:                 product.Name,
		Variant:              variant.Name,
		Quantity:             quantity,
		Price:                variant.Price,
		Total:                domain.LineTotal(quantity, variant.Price),
		Image:                product.Image,
		Confidence:           confidence,
		OriginalText:         line.OriginalText,
		ItemName:             line.ItemName,
		Unit:                 line.Unit,
		RequestedQuantity:    line.Quantity,
		Alternatives:         alternatives,
		RequiresConfirmation: s.policy.RequiresConfirmation(confidence),
	}
}

func (s *MatchingService) suggestions(candidates []domain.SearchCandidate) []domain.SuggestedCandidate {
	out := make([]domain.SuggestedCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.SuggestedCandidate{
			ProductID:  c.Product.ID,
			Name:       c.Product.Name,
			Confidence: s.policy.Confidence(c.Distance),
			Score:      c.Distance,
		})
	}
	return out
}

// LineID derives a stable identifier for an unmatched line from its seed
func LineID(seed string) string {
	return uuid.NewSHA1(lineNamespace, []byte(seed)).String()
}
