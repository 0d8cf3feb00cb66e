package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a product cannot be found in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrCatalogUnavailable is returned when the catalog collaborator cannot be read
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrOCRFailed is returned when the OCR engine could not read the document
	ErrOCRFailed = errors.New("could not read image")

	// ErrOCRTimeout is returned when the OCR engine did not answer in time
	ErrOCRTimeout = errors.New("text extraction timed out")

	// ErrNoTextDetected is returned when OCR succeeded but produced no text
	ErrNoTextDetected = errors.New("no text detected")

	// ErrUnsupportedFormat is returned for uploads that cannot be routed to OCR
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSessionNotFound is returned when a reconciliation session does not exist or expired
	ErrSessionNotFound = errors.New("reconciliation session not found")

	// ErrSessionClosed is returned for transitions on a committed or cancelled session
	ErrSessionClosed = errors.New("reconciliation session is closed")

	// ErrIndexOutOfRange is returned when a transition addresses a missing item
	ErrIndexOutOfRange = errors.New("item index out of range")

	// ErrNothingToCommit is returned when committing a session without matched items
	ErrNothingToCommit = errors.New("no matched items to commit")

	// ErrTransitionInFlight is returned when a lookup for the same line is still running
	ErrTransitionInFlight = errors.New("transition already in flight for this line")

	// ErrCartFailure is returned when the cart collaborator rejects an item
	ErrCartFailure = errors.New("cart rejected item")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
