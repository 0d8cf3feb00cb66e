package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/listcart/backend/internal/domain"
)

const (
	maxAttempts  = 3
	maxBodyBytes = 4 << 20
	baseBackoff  = 500 * time.Millisecond
)

// ClientConfig configures the storefront catalog client
type ClientConfig struct {
	BaseURL            string
	RateLimitPerSecond float64
	Timeout            time.Duration
}

// Client reads the catalog from the storefront products API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new storefront catalog client
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	rps := cfg.RateLimitPerSecond
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:      logger.With().Str("component", "catalog-client").Logger(),
		backoff:     exponentialBackoff,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s... for attempts 1, 2, 3...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseBackoff * time.Duration(1<<(attempt-1))
}

// ListActiveProducts fetches every active product
func (c *Client) ListActiveProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	params := url.Values{}
	params.Set("active", "true")

	var list productListDTO
	if err := c.getJSON(ctx, "/api/products?"+params.Encode(), &list); err != nil {
		return nil, err
	}

	return activeOnly(MapToCatalogProducts(list.Products)), nil
}

// GetProduct fetches one product by id. Inactive products count as missing.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	var dto productDTO
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id), &dto); err != nil {
		return nil, err
	}

	product := MapToCatalogProduct(dto)
	if !product.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return &product, nil
}

// SearchProducts asks the storefront for name matches. The result is
// filtered again locally so every adapter honours the same contract.
func (c *Client) SearchProducts(ctx context.Context, substring string) ([]domain.CatalogProduct, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("search", substring)

	var list productListDTO
	if err := c.getJSON(ctx, "/api/products?"+params.Encode(), &list); err != nil {
		return nil, err
	}

	return nameContains(MapToCatalogProducts(list.Products), substring), nil
}

// getJSON issues a GET with rate limiting and retries on transport errors,
// 429 and 5xx. 404 maps to domain.ErrProductNotFound.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", domain.ErrCatalogUnavailable, err)
		}

		status, body, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, ctx.Err())
			}
			c.logger.Warn().Err(err).Int("attempt", attempt).Str("url", reqURL).Msg("catalog request failed")
			lastErr = err
			continue
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%w: decode response: %v", domain.ErrCatalogUnavailable, err)
			}
			return nil
		case status == http.StatusNotFound:
			return domain.ErrProductNotFound
		case status == http.StatusTooManyRequests || status >= 500:
			c.logger.Warn().Int("status", status).Int("attempt", attempt).Str("url", reqURL).Msg("catalog request retrying")
			lastErr = fmt.Errorf("status %d", status)
			continue
		default:
			return fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, status, truncate(body, 200))
		}
	}

	return fmt.Errorf("%w: after %d attempts: %v", domain.ErrCatalogUnavailable, maxAttempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "listcart/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// readLimitedBody reads at most limit bytes and errors when the body is larger
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return body, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
