// Package app wires configuration into concrete collaborators. It is shared
// by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/listcart/backend/config"
	"github.com/listcart/backend/internal/domain"
	"github.com/listcart/backend/internal/infrastructure/cache"
	"github.com/listcart/backend/internal/infrastructure/catalog"
	"github.com/listcart/backend/internal/infrastructure/ocr"
	"github.com/listcart/backend/internal/usecase"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MatchConfig converts the matching section into the pipeline configuration.
// Configured max_alternatives of 0 means none, not the default.
func MatchConfig(cfg config.MatchingConfig) usecase.MatchConfig {
	alternatives := cfg.MaxAlternatives
	if alternatives == 0 {
		alternatives = usecase.NoAlternatives
	}
	return usecase.MatchConfig{
		IndexThreshold:      cfg.IndexThreshold,
		SuggestionThreshold: cfg.SuggestionThreshold,
		MatchThreshold:      cfg.MatchThreshold,
		ConfirmThreshold:    cfg.ConfirmThreshold,
		MinQueryLength:      cfg.MinQueryLength,
		MaxCandidates:       cfg.MaxCandidates,
		MaxAlternatives:     alternatives,
		MinNameLength:       cfg.MinNameLength,
		MinLineLength:       cfg.MinLineLength,
	}
}

// OpenCatalog builds the configured catalog repository
func OpenCatalog(ctx context.Context, cfg config.CatalogConfig, logger zerolog.Logger) (domain.CatalogRepository, io.Closer, error) {
	switch cfg.Source {
	case "file":
		repo, err := catalog.NewFileRepository(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.FilePath).Int("products", len(repo.Products())).Msg("catalog loaded from file")
		return repo, nopCloser{}, nil
	case "sqlite":
		repo, err := catalog.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("catalog opened from sqlite")
		return repo, repo, nil
	case "http":
		client := catalog.NewClient(catalog.ClientConfig{
			BaseURL:            cfg.BaseURL,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			Timeout:            cfg.Timeout,
		}, logger)
		logger.Info().Str("url", cfg.BaseURL).Msg("catalog served by storefront api")
		return client, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// OpenSessionStore builds the configured session store
func OpenSessionStore(ctx context.Context, cfg config.SessionConfig) (*cache.SessionStore, io.Closer, error) {
	switch cfg.Store {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSessionStore(redisCache, cfg.TTL), redisCache, nil
	default:
		memoryCache := cache.NewMemoryCache()
		return cache.NewSessionStore(memoryCache, cfg.TTL), memoryCache, nil
	}
}

// NewOCRService builds the OCR boundary for the configured provider
func NewOCRService(cfg config.Config, logger zerolog.Logger) *usecase.OCRService {
	var images domain.OCRClient
	if cfg.OCR.Provider == "http" {
		images = ocr.NewClient(ocr.ClientConfig{BaseURL: cfg.OCR.BaseURL}, logger)
	}

	return usecase.NewOCRService(images, ocr.NewPDFTextExtractor(), usecase.OCRConfig{
		Timeout:      cfg.OCR.Timeout,
		DemoFallback: cfg.OCR.DemoFallback,
		PDFText:      cfg.OCR.PDFText,
		MinLineLen:   cfg.Matching.MinLineLength,
	}, logger)
}
