package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"feeportal/internal/handler"
	"feeportal/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PayHereHandler    *handler.PayHereHandler
	SubmissionHandler *handler.SubmissionHandler
	ResponseStore     middleware.ResponseStore
	StatusLimiter     *middleware.IPRateLimiter
	AllowedOrigins    []string
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		payhere := api.Group("/payhere")
		{
			payhere.POST("/hash", deps.PayHereHandler.Hash)
			// Server-to-server; the signature is the only authentication.
			payhere.POST("/notify", deps.PayHereHandler.Notify)
			payhere.POST("/status", middleware.RateLimitMiddleware(deps.StatusLimiter), deps.PayHereHandler.Status)
		}

		api.POST("/submit-form", middleware.IdempotencyMiddleware(deps.ResponseStore), deps.SubmissionHandler.SubmitForm)
		api.POST("/s3-upload", deps.SubmissionHandler.UploadReceipt)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Idempotency-Key"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
