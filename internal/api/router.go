package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"terminal-queue-backend/config"
	"terminal-queue-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router around a fully built
// Handler.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// A non-positive TTL disables response caching entirely.
	var caching gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.CacheTTLSeconds > 0 {
		cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
		cacheStore := cache.New(cacheTTL, 10*cacheTTL)
		caching = mw.Cache(cacheStore, cacheTTL)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Gate scanner collaborators.
		api.POST("/gate/entry", handler.SubmitEntry)
		api.POST("/gate/exit", handler.SubmitExit)

		// Operator action: advance an entry along the status chain.
		api.POST("/entries/:entry_id/status", handler.AdvanceStatus)

		// Polled read-only feeds.
		api.GET("/tv-display", caching, handler.TVDisplay)
		api.GET("/queue", caching, handler.QueueView)
		api.GET("/routes", caching, handler.GetRoutes)

		// History ledger reads.
		api.GET("/history/vehicles/:plate", handler.VehicleHistory)
		api.GET("/history/routes/:route_id", handler.RouteHistory)

		// Push subscriptions for boarding announcements.
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
