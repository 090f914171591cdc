package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"terminal-queue-backend/internal/model"
	"terminal-queue-backend/internal/store"
)

type advanceStatusRequest struct {
	Status model.EntryStatus `json:"status" binding:"required"`
}

// AdvanceStatus handles POST /api/entries/{entry_id}/status: the operator
// action moving an entry along the waiting -> boarding -> departing chain.
// Reaching boarding dispatches the route announcement to push subscribers.
func (h *Handler) AdvanceStatus(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Param("entry_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	var req advanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := uuid.NewString()
	entry, err := h.store.AdvanceStatus(c.Request.Context(), entryID, req.Status, h.now(), ref)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		case errors.Is(err, store.ErrNoActiveEntry):
			c.JSON(http.StatusConflict, gin.H{"error": "entry is already closed"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": "InvalidTransition"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status change could not be recorded"})
		}
		return
	}

	if entry.Status == model.StatusBoarding && h.pool != nil {
		h.pool.Dispatch(entry.ID)
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry, "ref": ref})
}
