package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/listcart/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		ocr := v1.Group("/ocr")
		{
			ocr.POST("/upload", BodyLimitMiddleware(cfg.Server.MaxUploadMB<<20), handler.UploadList)
			ocr.POST("/match", handler.MatchLines)
		}

		authed := v1.Group("", UserMiddleware())
		{
			authed.GET("/cart", handler.GetCart)

			rec := authed.Group("/reconciliations")
			{
				rec.POST("", handler.StartReconciliation)
				rec.GET("/:id", handler.GetReconciliation)
				rec.PUT("/:id/matched/:index/quantity", handler.EditQuantity)
				rec.POST("/:id/matched/:index/swap", handler.SwapAlternative)
				rec.DELETE("/:id/matched/:index", handler.RemoveMatched)
				rec.DELETE("/:id/unmatched/:index", handler.SkipUnmatched)
				rec.POST("/:id/unmatched/:index/resolve", handler.ManualResolve)
				rec.POST("/:id/unmatched/:index/accept", handler.AcceptSuggestion)
				rec.POST("/:id/commit", handler.CommitReconciliation)
				rec.POST("/:id/cancel", handler.CancelReconciliation)
			}
		}
	}

	return router
}
