package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listcart/backend/internal/domain"
)

func newTestMatcher(catalog domain.CatalogRepository) *MatchingService {
	return NewMatchingService(catalog, MatchConfig{}, zerolog.Nop())
}

func TestMatchingService_Match(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end over a mixed list", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))

		result, err := service.Match(ctx, []string{"Apple 2kg", "xyz", "Milk 1L", "@@", "a 2kg"})
		require.NoError(t, err)

		require.Len(t, result.MatchedItems, 2)
		apple := result.MatchedItems[0]
		assert.Equal(t, "p-apple", apple.ProductID)
		assert.Equal(t, "2kg", apple.Variant)
		assert.Equal(t, 2, apple.Quantity)
		assert.Equal(t, 90.0, apple.Price)
		assert.Equal(t, 180.0, apple.Total)
		assert.Equal(t, 1.0, apple.Confidence)
		assert.False(t, apple.RequiresConfirmation)
		assert.Equal(t, "apple", apple.ItemName)
		assert.Equal(t, "kg", apple.Unit)
		assert.Equal(t, "Apple 2kg", apple.OriginalText)

		require.Len(t, apple.Alternatives, 1)
		alt := apple.Alternatives[0]
		assert.Equal(t, "p-pineapple", alt.ProductID)
		assert.Equal(t, DefaultVariantName, alt.Variant)
		assert.Equal(t, 60.0, alt.Price)
		assert.InDelta(t, 5.0/9.0, alt.Confidence, 0.001)

		milk := result.MatchedItems[1]
		assert.Equal(t, "p-milk", milk.ProductID)
		assert.Equal(t, "1L", milk.Variant)
		assert.Equal(t, 1, milk.Quantity)
		assert.Equal(t, 48.0, milk.Total)
		assert.Empty(t, milk.Alternatives)

		require.Len(t, result.UnmatchedLines, 1)
		xyz := result.UnmatchedLines[0]
		assert.Equal(t, "xyz", xyz.Text)
		assert.NotEmpty(t, xyz.ID)
		assert.NotNil(t, xyz.SearchResults)
		assert.Empty(t, xyz.SearchResults)

		assert.Equal(t, 228.0, result.Total)
		assert.Equal(t, domain.MatchSummary{Matched: 2, Unmatched: 1, TotalItems: 5, Dropped: 1, Noise: 1}, result.Summary)
	})

	t.Run("same input gives same output", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))
		lines := []string{"apple", "Pinapple", "qwerty", "doodh 500ml"}

		first, err := service.Match(ctx, lines)
		require.NoError(t, err)
		second, err := service.Match(ctx, lines)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("nil lines are rejected", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))

		_, err := service.Match(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("empty lines give an empty result", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))

		result, err := service.Match(ctx, []string{})
		require.NoError(t, err)
		assert.NotNil(t, result.MatchedItems)
		assert.NotNil(t, result.UnmatchedLines)
		assert.Zero(t, result.Total)
		assert.Equal(t, domain.MatchSummary{}, result.Summary)
	})

	t.Run("catalog error is reported as unavailable", func(t *testing.T) {
		catalog := NewMockCatalog()
		catalog.listErr = errors.New("connection refused")
		service := newTestMatcher(catalog)

		_, err := service.Match(ctx, []string{"apple"})
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("cancelled context stops matching", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := service.Match(cancelled, []string{"apple"})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("keywords match the product", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))

		result, err := service.Match(ctx, []string{"Doodh 500ml"})
		require.NoError(t, err)
		require.Len(t, result.MatchedItems, 1)
		assert.Equal(t, "p-milk", result.MatchedItems[0].ProductID)
		assert.Equal(t, "500ml", result.MatchedItems[0].Variant)
	})

	t.Run("inactive products never match", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog(testCatalog()...))

		result, err := service.MatchLines(ctx, []string{"apple"}, testCatalog())
		require.NoError(t, err)
		require.Len(t, result.MatchedItems, 1)
		assert.Equal(t, "p-apple", result.MatchedItems[0].ProductID)
		for _, alt := range result.MatchedItems[0].Alternatives {
			assert.NotEqual(t, "p-old-apple", alt.ProductID)
		}
	})
}

func TestMatchingService_Suggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("unmatched line carries near misses", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog())

		result, err := service.MatchLines(ctx, []string{"azzzz"}, testCatalog())
		require.NoError(t, err)
		require.Empty(t, result.MatchedItems)
		require.Len(t, result.UnmatchedLines, 1)

		line := result.UnmatchedLines[0]
		require.Len(t, line.SearchResults, 2)
		assert.Equal(t, "p-apple", line.SearchResults[0].ProductID)
		assert.Equal(t, "Apple", line.SearchResults[0].Name)
		assert.InDelta(t, 0.2, line.SearchResults[0].Confidence, 0.001)
		assert.InDelta(t, 0.8, line.SearchResults[0].Score, 0.001)
		assert.Equal(t, "p-banana", line.SearchResults[1].ProductID)
	})

	t.Run("suggestions respect the candidate limit", func(t *testing.T) {
		service := NewMatchingService(NewMockCatalog(), MatchConfig{MaxCandidates: 1}, zerolog.Nop())

		result, err := service.MatchLines(ctx, []string{"azzzz"}, testCatalog())
		require.NoError(t, err)
		require.Len(t, result.UnmatchedLines, 1)
		require.Len(t, result.UnmatchedLines[0].SearchResults, 1)
		assert.Equal(t, "p-apple", result.UnmatchedLines[0].SearchResults[0].ProductID)
	})

	t.Run("index hits the policy rejects become suggestions", func(t *testing.T) {
		service := NewMatchingService(NewMockCatalog(), MatchConfig{
			IndexThreshold:      0.9,
			SuggestionThreshold: 0.5,
		}, zerolog.Nop())

		result, err := service.MatchLines(ctx, []string{"azzzz"}, testCatalog())
		require.NoError(t, err)
		require.Empty(t, result.MatchedItems)
		require.Len(t, result.UnmatchedLines, 1)
		assert.Len(t, result.UnmatchedLines[0].SearchResults, 3)
	})

	t.Run("nothing close gives no suggestions", func(t *testing.T) {
		service := newTestMatcher(NewMockCatalog())

		result, err := service.MatchLines(ctx, []string{"xyz"}, testCatalog())
		require.NoError(t, err)
		require.Len(t, result.UnmatchedLines, 1)
		assert.NotNil(t, result.UnmatchedLines[0].SearchResults)
		assert.Empty(t, result.UnmatchedLines[0].SearchResults)
	})
}

func TestMatchingService_NoAlternatives(t *testing.T) {
	service := NewMatchingService(NewMockCatalog(), MatchConfig{MaxAlternatives: NoAlternatives}, zerolog.Nop())

	result, err := service.MatchLines(context.Background(), []string{"Apple 2kg"}, testCatalog())
	require.NoError(t, err)
	require.Len(t, result.MatchedItems, 1)
	assert.NotNil(t, result.MatchedItems[0].Alternatives)
	assert.Empty(t, result.MatchedItems[0].Alternatives)
}

func TestMatchingService_StockPolicy(t *testing.T) {
	ctx := context.Background()
	service := newTestMatcher(NewMockCatalog(testCatalog()...))

	t.Run("quantity is clamped to variant stock", func(t *testing.T) {
		result, err := service.Match(ctx, []string{"Rice 5kg"})
		require.NoError(t, err)
		require.Len(t, result.MatchedItems, 1)

		rice := result.MatchedItems[0]
		assert.Equal(t, "5kg", rice.Variant)
		assert.Equal(t, 2, rice.Quantity)
		assert.Equal(t, 5, rice.RequestedQuantity)
		assert.Equal(t, 600.0, rice.Total)
	})

	t.Run("zero stock leaves quantity unclamped", func(t *testing.T) {
		result, err := service.Match(ctx, []string{"Banana 3 pcs"})
		require.NoError(t, err)
		require.Len(t, result.MatchedItems, 1)

		banana := result.MatchedItems[0]
		assert.Equal(t, DefaultVariantName, banana.Variant)
		assert.Equal(t, 3, banana.Quantity)
		assert.Equal(t, 120.0, banana.Total)
	})

	t.Run("fuzzy match is flagged for confirmation", func(t *testing.T) {
		result, err := service.Match(ctx, []string{"banana 3"})
		require.NoError(t, err)
		require.Len(t, result.MatchedItems, 1)

		banana := result.MatchedItems[0]
		assert.Equal(t, "p-banana", banana.ProductID)
		assert.InDelta(t, 0.75, banana.Confidence, 0.001)
		assert.True(t, banana.RequiresConfirmation)
	})
}

func TestLineID(t *testing.T) {
	assert.Equal(t, LineID("0:xyz"), LineID("0:xyz"))
	assert.NotEqual(t, LineID("0:xyz"), LineID("1:xyz"))
}
