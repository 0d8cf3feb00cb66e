package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/listcart/backend/config"
	"github.com/listcart/backend/internal/app"
	httpDelivery "github.com/listcart/backend/internal/delivery/http"
	"github.com/listcart/backend/internal/infrastructure/cart"
	"github.com/listcart/backend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := config.SetupLogger(cfg.Log)
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("catalog", cfg.Catalog.Source).
		Str("ocr", cfg.OCR.Provider).
		Str("sessions", cfg.Session.Store).
		Msg("starting listcart backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogRepo, catalogCloser, err := app.OpenCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer catalogCloser.Close()

	sessions, sessionCloser, err := app.OpenSessionStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessionCloser.Close()

	carts := cart.NewMemoryStore()

	matcher := usecase.NewMatchingService(catalogRepo, app.MatchConfig(cfg.Matching), logger)
	reconciler := usecase.NewReconciliationService(matcher, catalogRepo, sessions, carts, logger)
	ocrService := app.NewOCRService(*cfg, logger)

	logger.Info().
		Float64("index_threshold", cfg.Matching.IndexThreshold).
		Float64("match_threshold", cfg.Matching.MatchThreshold).
		Float64("confirm_threshold", cfg.Matching.ConfirmThreshold).
		Bool("demo_fallback", cfg.OCR.DemoFallback).
		Msg("matching configured")

	handler := httpDelivery.NewHandler(matcher, ocrService, reconciler, carts)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
