package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listcart/backend/internal/domain"
)

// Reconciler drives confirmation sessions
type Reconciler interface {
	Start(ctx context.Context, userID string, lines []string) (*domain.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	EditQuantity(ctx context.Context, userID, sessionID string, index, quantity int) (*domain.Session, error)
	SwapAlternative(ctx context.Context, userID, sessionID string, index, altIndex int) (*domain.Session, error)
	RemoveMatched(ctx context.Context, userID, sessionID string, index int) (*domain.Session, error)
	SkipUnmatched(ctx context.Context, userID, sessionID string, index int) (*domain.Session, error)
	ManualResolve(ctx context.Context, userID, sessionID string, index int, typedName string) (*domain.Session, error)
	AcceptSuggestion(ctx context.Context, userID, sessionID string, index, suggestionIndex int) (*domain.Session, error)
	Commit(ctx context.Context, userID, sessionID string) (*domain.CommitResult, error)
	Cancel(ctx context.Context, userID, sessionID string) (*domain.Session, error)
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type swapRequest struct {
	Alternative *int `json:"alternative" binding:"required"`
}

type resolveRequest struct {
	Name string `json:"name" binding:"required"`
}

type acceptRequest struct {
	Suggestion *int `json:"suggestion" binding:"required"`
}

// StartReconciliation handles POST /api/v1/reconciliations
func (h *Handler) StartReconciliation(c *gin.Context) {
	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: lines array is required", domain.ErrInvalidRequest))
		return
	}

	session, err := h.reconciler.Start(c.Request.Context(), userID(c), req.Lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetReconciliation handles GET /api/v1/reconciliations/:id
func (h *Handler) GetReconciliation(c *gin.Context) {
	h.respondSession(c)(h.reconciler.Get(c.Request.Context(), userID(c), c.Param("id")))
}

// EditQuantity handles PUT /api/v1/reconciliations/:id/matched/:index/quantity
func (h *Handler) EditQuantity(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: quantity is required", domain.ErrInvalidRequest))
		return
	}

	h.respondSession(c)(h.reconciler.EditQuantity(c.Request.Context(), userID(c), c.Param("id"), index, *req.Quantity))
}

// SwapAlternative handles POST /api/v1/reconciliations/:id/matched/:index/swap
func (h *Handler) SwapAlternative(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: alternative is required", domain.ErrInvalidRequest))
		return
	}

	h.respondSession(c)(h.reconciler.SwapAlternative(c.Request.Context(), userID(c), c.Param("id"), index, *req.Alternative))
}

// RemoveMatched handles DELETE /api/v1/reconciliations/:id/matched/:index
func (h *Handler) RemoveMatched(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondSession(c)(h.reconciler.RemoveMatched(c.Request.Context(), userID(c), c.Param("id"), index))
}

// SkipUnmatched handles DELETE /api/v1/reconciliations/:id/unmatched/:index
func (h *Handler) SkipUnmatched(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondSession(c)(h.reconciler.SkipUnmatched(c.Request.Context(), userID(c), c.Param("id"), index))
}

// ManualResolve handles POST /api/v1/reconciliations/:id/unmatched/:index/resolve
func (h *Handler) ManualResolve(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest))
		return
	}

	h.respondSession(c)(h.reconciler.ManualResolve(c.Request.Context(), userID(c), c.Param("id"), index, req.Name))
}

// AcceptSuggestion handles POST /api/v1/reconciliations/:id/unmatched/:index/accept
func (h *Handler) AcceptSuggestion(c *gin.Context) {
	index, err := pathIndex(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: suggestion is required", domain.ErrInvalidRequest))
		return
	}

	h.respondSession(c)(h.reconciler.AcceptSuggestion(c.Request.Context(), userID(c), c.Param("id"), index, *req.Suggestion))
}

// CommitReconciliation handles POST /api/v1/reconciliations/:id/commit
func (h *Handler) CommitReconciliation(c *gin.Context) {
	result, err := h.reconciler.Commit(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelReconciliation handles POST /api/v1/reconciliations/:id/cancel
func (h *Handler) CancelReconciliation(c *gin.Context) {
	h.respondSession(c)(h.reconciler.Cancel(c.Request.Context(), userID(c), c.Param("id")))
}

func (h *Handler) respondSession(c *gin.Context) func(*domain.Session, error) {
	return func(session *domain.Session, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}
