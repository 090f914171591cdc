package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"terminal-queue-backend/internal/feed"
	"terminal-queue-backend/internal/model"
)

// TVDisplay handles GET /api/tv-display: the public board feed, boarding and
// departing entries only, grouped by route.
func (h *Handler) TVDisplay(c *gin.Context) {
	ctx := c.Request.Context()

	routes, err := h.store.Routes(ctx, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve routes"})
		return
	}

	// Best-effort display: when entries cannot be read, serve the route
	// sections empty instead of failing the whole feed.
	grouped, err := h.store.ActiveEntriesGrouped(ctx)
	if err != nil {
		log.Printf("tv-display: failed to read active entries: %v", err)
		grouped = map[int64][]model.ActiveEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"generatedAt": feed.FormatTime(h.now(), h.loc),
		"routes":      feed.BuildBoard(routes, grouped, h.now(), h.loc),
	})
}

// QueueView handles GET /api/queue: the passenger-facing view including
// waiting vehicles and queue positions.
func (h *Handler) QueueView(c *gin.Context) {
	ctx := c.Request.Context()

	routes, err := h.store.Routes(ctx, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve routes"})
		return
	}

	grouped, err := h.store.ActiveEntriesGrouped(ctx)
	if err != nil {
		log.Printf("queue view: failed to read active entries: %v", err)
		grouped = map[int64][]model.ActiveEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"generatedAt": feed.FormatTime(h.now(), h.loc),
		"routes":      feed.BuildQueueView(routes, grouped, h.loc),
	})
}

// GetRoutes handles GET /api/routes: active route reference data.
func (h *Handler) GetRoutes(c *gin.Context) {
	routes, err := h.store.Routes(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve routes"})
		return
	}
	c.JSON(http.StatusOK, routes)
}
