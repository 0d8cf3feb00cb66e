package domain

// ExtractedLine is the deterministic result of normalizing and parsing one OCR line
type ExtractedLine struct {
	OriginalText string `json:"originalText"`
	Normalized   string `json:"normalized"`
	ItemName     string `json:"itemName"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
}

// SearchCandidate is a product returned by the catalog index with its distance.
// Distance is in [0,1], 0 meaning an exact match.
type SearchCandidate struct {
	Product  CatalogProduct
	Distance float64
}

// AlternativeCandidate is a runner-up offered for substitution on a matched item
type AlternativeCandidate struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Variant    string  `json:"variant"`
	Price      float64 `json:"price"`
	Image      string  `json:"image,omitempty"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

// SuggestedCandidate is a below-threshold hint attached to an unmatched line
type SuggestedCandidate struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

// MatchedItem is a line resolved to a catalog product and priced variant
type MatchedItem struct {
	ProductID            string                 `json:"productId"`
	Name                 string                 `json:"name"`
	Variant              string                 `json:"variant"`
	Quantity             int                    `json:"quantity"`
	Price                float64                `json:"price"`
	Total                float64                `json:"total"`
	Image                string                 `json:"image,omitempty"`
	Confidence           float64                `json:"confidence"`
	OriginalText         string                 `json:"originalText"`
	ItemName             string                 `json:"itemName"`
	Unit                 string                 `json:"unit"`
	RequestedQuantity    int                    `json:"requestedQuantity"`
	Alternatives         []AlternativeCandidate `json:"alternatives"`
	RequiresConfirmation bool                   `json:"requiresConfirmation"`
}

// UnmatchedLine is a line the pipeline could not confidently resolve
type UnmatchedLine struct {
	ID            string               `json:"id"`
	Text          string               `json:"text"`
	ItemName      string               `json:"itemName"`
	Quantity      int                  `json:"quantity"`
	Unit          string               `json:"unit"`
	SearchResults []SuggestedCandidate `json:"searchResults"`
}

// MatchSummary holds the per-request counts
type MatchSummary struct {
	Matched    int `json:"matched"`
	Unmatched  int `json:"unmatched"`
	TotalItems int `json:"totalItems"`
	Dropped    int `json:"dropped"`
	Noise      int `json:"noise"`
}

// MatchResult is the orchestrator output for one batch of lines
type MatchResult struct {
	MatchedItems   []MatchedItem   `json:"matchedItems"`
	UnmatchedLines []UnmatchedLine `json:"unmatchedLines"`
	Total          float64         `json:"total"`
	Summary        MatchSummary    `json:"summary"`
}

// MatchRequest is the wire request of the match endpoint
type MatchRequest struct {
	Lines []string `json:"lines" binding:"required"`
}
