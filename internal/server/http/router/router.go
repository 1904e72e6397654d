package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	appLogger "github.com/polkiloo/cakeshop-checkout/internal/logger"
	pkgAuth "github.com/polkiloo/cakeshop-checkout/internal/pkg/auth"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/handlers"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/middleware"
)

const callbackBodyLimit = 64 << 10

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, verifier pkgAuth.KeyVerifier, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if cfg.Env == appLogger.EnvLocal {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		engine.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	checkoutHandler := handlers.NewCheckoutHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	adminHandler := handlers.NewAdminHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade, logger)

	engine.GET("/health", healthHandler.Check)
	engine.POST("/mpesa/callback", middleware.LimitBody(callbackBodyLimit), paymentHandler.Callback)

	api := engine.Group("/api")
	api.POST("/checkout", checkoutHandler.Checkout)
	api.GET("/checkout/county-stations", checkoutHandler.Stations)
	api.GET("/orders/:id/payment-status", paymentHandler.Status)
	api.POST("/orders/:id/cancel", paymentHandler.Cancel)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(verifier, logger))
	admin.GET("/orders", adminHandler.List)
	admin.GET("/orders/:id", adminHandler.Get)
	admin.POST("/orders/:id/fulfill", adminHandler.Fulfill)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Content-Encoding", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
