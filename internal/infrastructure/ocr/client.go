package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/listcart/backend/internal/domain"
)

const maxResponseBytes = 1 << 20

// ClientConfig configures the OCR sidecar client
type ClientConfig struct {
	BaseURL            string
	RateLimitPerSecond float64
}

// recognizeResponse is the sidecar's reply to POST /v1/recognize
type recognizeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Client sends images to an OCR sidecar over HTTP. Deadlines come from the caller's context.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a new OCR sidecar client
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	rps := cfg.RateLimitPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger.With().Str("component", "ocr-client").Logger(),
	}
}

// ExtractText uploads the image and returns the recognized text
func (c *Client) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", c.contextError(ctx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/recognize", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrOCRFailed, err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.contextError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", c.contextError(ctx, err)
	}

	var payload recognizeResponse
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &payload)
		c.logger.Warn().Int("status", resp.StatusCode).Str("error", payload.Error).Msg("ocr sidecar rejected image")
		return "", fmt.Errorf("%w: sidecar status %d", domain.ErrOCRFailed, resp.StatusCode)
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrOCRFailed, err)
	}

	c.logger.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(payload.Text)).Msg("ocr sidecar responded")
	return payload.Text, nil
}

func (c *Client) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrOCRTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrOCRFailed, err)
}
