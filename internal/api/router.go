// Package api implements the HTTP surface (C7) of spec.md §6: a gin router
// exposing upload, job submission, job status, provider discovery and
// result download over the versioned /api/v1 prefix.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/pkg/logger"
	"github.com/indra622/world-of-asr/pkg/middleware"
)

// SetupRoutes builds the router over handler. Unlike the teacher's product
// surface, spec.md §6 names no user/session concept anywhere in its HTTP
// API section, so no auth middleware is wired here — every route is public,
// gated only by the upload admission checks and job-lookup validation the
// handlers themselves perform.
func SetupRoutes(handler *Handler, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger.SetGinOutput()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	router.Use(middleware.CompressionMiddleware())
	router.Use(corsMiddleware(cfg))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		upload := v1.Group("")
		upload.Use(middleware.NoCompressionMiddleware())
		{
			upload.POST("/upload", handler.Upload)
		}

		transcribe := v1.Group("/transcribe")
		{
			transcribe.POST("", handler.CreateJob)
			transcribe.GET("/jobs/:job_id", handler.GetJob)
			transcribe.DELETE("/jobs/:job_id", handler.CancelJob)
			transcribe.GET("/providers", handler.Providers)
		}

		results := v1.Group("/results")
		{
			results.GET("/:job_id", handler.GetResultsSummary)
			results.GET("/:job_id/:format", handler.DownloadResult)
		}
	}

	return router
}

// corsMiddleware mirrors the teacher's production/development origin-check
// split (internal/api/router.go), generalized to this service's Config.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowOrigin := "*"
		if cfg.IsProduction() && len(cfg.AllowedOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range cfg.AllowedOrigins {
				if origin == allowed {
					allowOrigin = origin
					break
				}
			}
		} else if origin != "" {
			allowOrigin = origin
		}

		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
