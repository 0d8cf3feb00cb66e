package usecase

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/listcart/backend/internal/domain"
)

// Index defaults
const (
	DefaultIndexThreshold = 0.6 // candidates farther than this are rejected
	DefaultMinQueryLength = 2
	DefaultMaxCandidates  = 3
)

// CatalogIndex ranks catalog products against a free-text query
type CatalogIndex interface {
	// Search returns candidates ordered most similar first
	Search(query string) []domain.SearchCandidate
}

// IndexOptions configures a FuzzyIndex
type IndexOptions struct {
	Threshold      float64
	MinQueryLength int
	MaxCandidates  int
}

// indexEntry holds the normalized searchable fields of one product
type indexEntry struct {
	product domain.CatalogProduct
	fields  []string
}

// FuzzyIndex is an in-memory edit-distance index over product names and keywords.
// It is built per match request and never updated.
type FuzzyIndex struct {
	entries        []indexEntry
	threshold      float64
	minQueryLength int
	maxCandidates  int
}

// NewFuzzyIndex indexes the active products among the given ones
func NewFuzzyIndex(products []domain.CatalogProduct, opts IndexOptions) *FuzzyIndex {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultIndexThreshold
	}
	minLen := opts.MinQueryLength
	if minLen <= 0 {
		minLen = DefaultMinQueryLength
	}
	maxCand := opts.MaxCandidates
	if maxCand <= 0 {
		maxCand = DefaultMaxCandidates
	}

	idx := &FuzzyIndex{
		entries:        make([]indexEntry, 0, len(products)),
		threshold:      threshold,
		minQueryLength: minLen,
		maxCandidates:  maxCand,
	}

	for _, p := range products {
		if !p.IsActive {
			continue
		}
		fields := make([]string, 0, 1+len(p.SearchKeywords))
		if name := NormalizeLine(p.Name); name != "" {
			fields = append(fields, name)
		}
		for _, kw := range p.SearchKeywords {
			if k := NormalizeLine(kw); k != "" {
				fields = append(fields, k)
			}
		}
		if len(fields) == 0 {
			continue
		}
		idx.entries = append(idx.entries, indexEntry{product: p, fields: fields})
	}

	return idx
}

// Size returns the number of indexed products
func (idx *FuzzyIndex) Size() int {
	return len(idx.entries)
}

// Search scores every indexed product against the query and returns the
// best candidates within the threshold, closest first. Ties keep catalog order.
func (idx *FuzzyIndex) Search(query string) []domain.SearchCandidate {
	return idx.SearchWithin(query, idx.threshold)
}

// SearchWithin is Search with an explicit distance cutoff
func (idx *FuzzyIndex) SearchWithin(query string, threshold float64) []domain.SearchCandidate {
	q := NormalizeLine(query)
	if len([]rune(q)) < idx.minQueryLength {
		return nil
	}

	var candidates []domain.SearchCandidate
	for _, e := range idx.entries {
		best := 1.0
		for _, f := range e.fields {
			if d := fieldDistance(q, f); d < best {
				best = d
			}
		}
		if best > threshold {
			continue
		}
		candidates = append(candidates, domain.SearchCandidate{Product: e.product, Distance: best})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > idx.maxCandidates {
		candidates = candidates[:idx.maxCandidates]
	}
	return candidates
}

// fieldDistance is 1 minus the better of whole-string and token similarity
func fieldDistance(query, field string) float64 {
	if query == field {
		return 0
	}
	sim := editSimilarity(query, field)
	if ts := tokenSimilarity(query, field); ts > sim {
		sim = ts
	}
	return clamp01(1 - sim)
}

// editSimilarity is the normalized Damerau-Levenshtein similarity in [0,1]
func editSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	m := la
	if lb > m {
		m = lb
	}
	if m == 0 {
		return 1
	}
	d := matchr.DamerauLevenshtein(a, b)
	return clamp01(1 - float64(d)/float64(m))
}

// extraTokenPenalty is the similarity lost when every field token goes unused
const extraTokenPenalty = 0.1

// tokenSimilarity pairs every query token with its closest field token and
// averages over the query, so "salt" fully covers "iodised salt". Field
// tokens left over cost a little, keeping the exact name ahead.
func tokenSimilarity(query, field string) float64 {
	qt := strings.Fields(query)
	ft := strings.Fields(field)
	if len(qt) == 0 || len(ft) == 0 {
		return 0
	}

	sum := 0.0
	for _, q := range qt {
		best := 0.0
		for _, f := range ft {
			if s := editSimilarity(q, f); s > best {
				best = s
			}
		}
		sum += best
	}
	coverage := sum / float64(len(qt))

	if extra := len(ft) - len(qt); extra > 0 {
		coverage -= extraTokenPenalty * float64(extra) / float64(len(ft))
	}
	return clamp01(coverage)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
