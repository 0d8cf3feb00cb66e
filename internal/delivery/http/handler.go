package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/listcart/backend/internal/domain"
)

// Matcher runs the matching pipeline over OCR lines
type Matcher interface {
	Match(ctx context.Context, lines []string) (*domain.MatchResult, error)
}

// TextExtractor reads shopping-list lines off an uploaded file
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte, declaredMIME string) (*domain.UploadResult, error)
}

// CartReader exposes a user's cart
type CartReader interface {
	Items(ctx context.Context, userID string) ([]domain.CartItem, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matcher    Matcher
	extractor  TextExtractor
	reconciler Reconciler
	cart       CartReader
}

// NewHandler creates a new HTTP handler
func NewHandler(matcher Matcher, extractor TextExtractor, reconciler Reconciler, cart CartReader) *Handler {
	return &Handler{
		matcher:    matcher,
		extractor:  extractor,
		reconciler: reconciler,
		cart:       cart,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "listcart-backend",
		"version": "1.0.0",
	})
}

// MatchLines handles POST /api/v1/ocr/match
func (h *Handler) MatchLines(c *gin.Context) {
	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: lines array is required", domain.ErrInvalidRequest))
		return
	}

	result, err := h.matcher.Match(c.Request.Context(), req.Lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UploadList handles POST /api/v1/ocr/upload (multipart field "file")
func (h *Handler) UploadList(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if _, code := statusFor(err); code == "FILE_TOO_LARGE" {
			respondError(c, err)
			return
		}
		respondError(c, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidRequest))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("%w: unreadable upload: %v", domain.ErrInvalidRequest, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, fmt.Errorf("%w: unreadable upload: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCart handles GET /api/v1/cart
func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.cart.Items(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	totals := make([]float64, 0, len(items))
	for _, item := range items {
		totals = append(totals, item.Total)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": domain.SumTotals(totals...),
	})
}

// pathIndex parses a non-negative integer path parameter
func pathIndex(c *gin.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidRequest, name)
	}
	return n, nil
}
