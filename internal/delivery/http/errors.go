package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listcart/backend/internal/domain"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
	{domain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrSessionClosed, http.StatusConflict, "SESSION_CLOSED"},
	{domain.ErrTransitionInFlight, http.StatusConflict, "TRANSITION_IN_FLIGHT"},
	{domain.ErrIndexOutOfRange, http.StatusUnprocessableEntity, "INDEX_OUT_OF_RANGE"},
	{domain.ErrNothingToCommit, http.StatusUnprocessableEntity, "NOTHING_TO_COMMIT"},
	{domain.ErrNoTextDetected, http.StatusUnprocessableEntity, "NO_TEXT_DETECTED"},
	{domain.ErrOCRTimeout, http.StatusGatewayTimeout, "OCR_TIMEOUT"},
	{domain.ErrOCRFailed, http.StatusBadGateway, "OCR_FAILED"},
	{domain.ErrCatalogUnavailable, http.StatusBadGateway, "CATALOG_UNAVAILABLE"},
	{domain.ErrCartFailure, http.StatusBadGateway, "CART_FAILURE"},
}

// statusFor maps a domain error to its HTTP status and error code
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// respondError writes the mapped error and aborts the chain
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: GetRequestID(c),
	})
}
