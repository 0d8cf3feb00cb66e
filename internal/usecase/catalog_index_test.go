package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listcart/backend/internal/domain"
)

func TestFuzzyIndex(t *testing.T) {
	index := NewFuzzyIndex(testCatalog(), IndexOptions{})

	t.Run("skips inactive products", func(t *testing.T) {
		assert.Equal(t, 5, index.Size())
	})

	t.Run("exact name is distance zero", func(t *testing.T) {
		got := index.Search("Apple")
		require.NotEmpty(t, got)
		assert.Equal(t, "p-apple", got[0].Product.ID)
		assert.Zero(t, got[0].Distance)
	})

	t.Run("typo still finds product", func(t *testing.T) {
		got := index.Search("aple")
		require.NotEmpty(t, got)
		assert.Equal(t, "p-apple", got[0].Product.ID)
		assert.InDelta(t, 0.2, got[0].Distance, 0.001)
	})

	t.Run("keyword field", func(t *testing.T) {
		got := index.Search("doodh")
		require.NotEmpty(t, got)
		assert.Equal(t, "p-milk", got[0].Product.ID)
	})

	t.Run("results are ordered closest first", func(t *testing.T) {
		got := index.Search("apple")
		require.Len(t, got, 2)
		assert.Equal(t, "p-apple", got[0].Product.ID)
		assert.Equal(t, "p-pineapple", got[1].Product.ID)
		assert.Less(t, got[0].Distance, got[1].Distance)
	})

	t.Run("nothing within threshold", func(t *testing.T) {
		assert.Empty(t, index.Search("xyz"))
	})

	t.Run("short query", func(t *testing.T) {
		assert.Empty(t, index.Search("a"))
	})

	t.Run("candidate limit", func(t *testing.T) {
		many := []domain.CatalogProduct{
			{ID: "1", Name: "Tea", IsActive: true},
			{ID: "2", Name: "Tea", IsActive: true},
			{ID: "3", Name: "Tea", IsActive: true},
		}
		limited := NewFuzzyIndex(many, IndexOptions{MaxCandidates: 2})

		got := limited.Search("tea")
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].Product.ID)
		assert.Equal(t, "2", got[1].Product.ID)
	})

	t.Run("token overlap beats whole-string distance", func(t *testing.T) {
		multi := NewFuzzyIndex([]domain.CatalogProduct{
			{ID: "bread", Name: "Brown Bread", IsActive: true},
		}, IndexOptions{})

		got := multi.Search("bread brown")
		require.Len(t, got, 1)
		assert.Zero(t, got[0].Distance)
	})

	t.Run("single word finds multi-word names", func(t *testing.T) {
		grocery := NewFuzzyIndex([]domain.CatalogProduct{
			{ID: "salt", Name: "Iodised Salt", IsActive: true},
			{ID: "milk", Name: "Amul Taaza Toned Milk", IsActive: true},
			{ID: "rice", Name: "India Gate Basmati Rice", IsActive: true},
		}, IndexOptions{})

		tests := []struct {
			query    string
			expected string
			distance float64
		}{
			{"salt", "salt", 0.05},
			{"milk", "milk", 0.075},
			{"rice", "rice", 0.075},
			{"basmati rice", "rice", 0.05},
		}

		for _, tt := range tests {
			got := grocery.Search(tt.query)
			require.Len(t, got, 1, tt.query)
			assert.Equal(t, tt.expected, got[0].Product.ID, tt.query)
			assert.InDelta(t, tt.distance, got[0].Distance, 0.001, tt.query)
		}
	})

	t.Run("exact name ranks ahead of a longer name", func(t *testing.T) {
		salts := NewFuzzyIndex([]domain.CatalogProduct{
			{ID: "iodised", Name: "Iodised Salt", IsActive: true},
			{ID: "plain", Name: "Salt", IsActive: true},
		}, IndexOptions{})

		got := salts.Search("salt")
		require.Len(t, got, 2)
		assert.Equal(t, "plain", got[0].Product.ID)
		assert.Equal(t, "iodised", got[1].Product.ID)
	})

	t.Run("wider threshold", func(t *testing.T) {
		assert.Empty(t, index.Search("azzzz"))

		got := index.SearchWithin("azzzz", 0.85)
		require.Len(t, got, 2)
		assert.Equal(t, "p-apple", got[0].Product.ID)
		assert.InDelta(t, 0.8, got[0].Distance, 0.001)
		assert.Equal(t, "p-banana", got[1].Product.ID)
	})
}
