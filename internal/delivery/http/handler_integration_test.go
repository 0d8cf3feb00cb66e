package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listcart/backend/config"
	"github.com/listcart/backend/internal/domain"
	"github.com/listcart/backend/internal/infrastructure/cache"
	"github.com/listcart/backend/internal/infrastructure/cart"
	"github.com/listcart/backend/internal/infrastructure/catalog"
	"github.com/listcart/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var storeProducts = []domain.CatalogProduct{
	{
		ID: "p-apple", Name: "Apple", BasePrice: 80, IsActive: true,
		Variants: []domain.Variant{{Name: "1kg", Price: 50, Stock: 10}, {Name: "2kg", Price: 90, Stock: 5}},
	},
	{
		ID: "p-milk", Name: "Milk", BasePrice: 30, IsActive: true,
		Variants: []domain.Variant{{Name: "500ml", Price: 25, Stock: 20}, {Name: "1L", Price: 48, Stock: 20}},
	},
	{ID: "p-pineapple", Name: "Pineapple", BasePrice: 60, Stock: 8, IsActive: true},
	{ID: "p-sugar", Name: "Sugar", BasePrice: 45, Stock: 30, IsActive: true},
}

// setupTestRouter wires the real services over in-memory collaborators
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
			MaxUploadMB:    1,
		},
	}

	logger := zerolog.Nop()
	repo := catalog.NewStaticRepository(storeProducts)
	memory := cache.NewMemoryCache()
	t.Cleanup(func() { _ = memory.Close() })
	carts := cart.NewMemoryStore()

	matcher := usecase.NewMatchingService(repo, usecase.MatchConfig{}, logger)
	reconciler := usecase.NewReconciliationService(matcher, repo, cache.NewSessionStore(memory, 0), carts, logger)
	ocr := usecase.NewOCRService(nil, nil, usecase.OCRConfig{DemoFallback: true}, logger)

	return SetupRouter(cfg, NewHandler(matcher, ocr, reconciler, carts), logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "listcart-backend", body["service"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMatchEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("matches lines", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ocr/match", "", domain.MatchRequest{
			Lines: []string{"Apple 2kg", "xyz", "Milk 1L"},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[domain.MatchResult](t, w)
		assert.Len(t, result.MatchedItems, 2)
		assert.Len(t, result.UnmatchedLines, 1)
		assert.Equal(t, 228.0, result.Total)
		assert.Equal(t, 3, result.Summary.TotalItems)
	})

	t.Run("empty lines", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ocr/match", "", map[string]any{"lines": []string{}})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[domain.MatchResult](t, w)
		assert.Empty(t, result.MatchedItems)
	})

	t.Run("missing lines", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ocr/match", "", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[errorResponse](t, w)
		assert.Equal(t, "INVALID_REQUEST", body.Code)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/match", bytes.NewBufferString("{lines:"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadEndpoint(t *testing.T) {
	router := setupTestRouter(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	t.Run("image without ocr provider serves demo text", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartUpload(t, "list.png", "image/png", png))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[domain.UploadResult](t, w)
		assert.True(t, result.IsDemoData)
		assert.Equal(t, 8, result.ItemCount)
		assert.Equal(t, domain.FileKindImage, result.FileInfo.Type)
	})

	t.Run("word document", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartUpload(t, "list.doc", "application/msword", []byte("hello")))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("no file", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ocr/upload", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartUpload(t, "big.png", "image/png", append(png, make([]byte, 2<<20)...)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "FILE_TOO_LARGE", decode[errorResponse](t, w).Code)
	})
}

func TestReconciliationFlow(t *testing.T) {
	router := setupTestRouter(t)
	const user = "user-1"

	w := doJSON(t, router, http.MethodPost, "/api/v1/reconciliations", user, domain.MatchRequest{
		Lines: []string{"Apple 1kg", "Milk 1L", "Sugr", "xyz"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[domain.Session](t, w)
	require.Len(t, session.MatchedItems, 3)
	require.Len(t, session.UnmatchedLines, 1)
	base := "/api/v1/reconciliations/" + session.ID

	t.Run("requires a user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, base, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("other users get not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, base, "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("edit quantity", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, base+"/matched/0/quantity", user, map[string]int{"quantity": 3})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s := decode[domain.Session](t, w)
		assert.Equal(t, 150.0, s.MatchedItems[0].Total)
	})

	t.Run("edit quantity without body", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, base+"/matched/0/quantity", user, map[string]int{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad index", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, base+"/matched/abc", user, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodDelete, base+"/matched/9", user, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("manual resolve", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/unmatched/0/resolve", user, map[string]string{"name": "pineapple"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s := decode[domain.Session](t, w)
		assert.Empty(t, s.UnmatchedLines)
		assert.Equal(t, "p-pineapple", s.MatchedItems[3].ProductID)
	})

	t.Run("manual resolve without match", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, base+"/matched/3", user, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, base+"/unmatched/0/resolve", user, map[string]string{"name": "caviar"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, router, http.MethodDelete, base+"/unmatched/0", user, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("commit adds to cart", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/commit", user, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[domain.CommitResult](t, w)
		assert.Equal(t, 3, result.Added)
		assert.Empty(t, result.Failed)

		w = doJSON(t, router, http.MethodGet, "/api/v1/cart", user, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[struct {
			Items []domain.CartItem `json:"items"`
			Total float64           `json:"total"`
		}](t, w)
		assert.Len(t, body.Items, 3)
		assert.Equal(t, result.Cart.Total, body.Total)
	})

	t.Run("closed session", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/cancel", user, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SESSION_CLOSED", decode[errorResponse](t, w).Code)
	})
}

func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/ocr/match", "", domain.MatchRequest{Lines: []string{"apple"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
