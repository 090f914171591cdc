package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"terminal-queue-backend/internal/feed"
	"terminal-queue-backend/internal/model"
	"terminal-queue-backend/internal/parse"
)

// historyEventResponse is a formatted audit row. Display attributes come from
// the total status mapping, so exit events render with the Departed label that
// the live feed never uses.
type historyEventResponse struct {
	Kind       model.HistoryKind `json:"kind"`
	Status     model.EntryStatus `json:"status"`
	Display    feed.DisplayAttrs `json:"display"`
	OccurredAt time.Time         `json:"occurredAt"`
	Formatted  string            `json:"formatted"`
	RouteID    int64             `json:"routeId"`
	VehicleID  int64             `json:"vehicleId"`
	Ref        string            `json:"ref"`
}

func (h *Handler) historyResponse(events []model.HistoryEvent) []historyEventResponse {
	out := make([]historyEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, historyEventResponse{
			Kind:       e.Kind,
			Status:     e.Status,
			Display:    feed.Display(e.Status),
			OccurredAt: e.OccurredAt,
			Formatted:  feed.FormatTime(e.OccurredAt, h.loc),
			RouteID:    e.RouteID,
			VehicleID:  e.VehicleID,
			Ref:        e.Ref,
		})
	}
	return out
}

// VehicleHistory handles GET /api/history/vehicles/{plate}: the full ordered
// audit trail for one vehicle.
func (h *Handler) VehicleHistory(c *gin.Context) {
	plate, err := parse.PlateNumber(c.Param("plate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	vehicle, err := h.store.VehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up vehicle"})
		}
		return
	}

	events, err := h.store.HistoryByVehicle(ctx, vehicle.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle": vehicle.PlateNumber,
		"events":  h.historyResponse(events),
	})
}

// RouteHistory handles GET /api/history/routes/{route_id}?from=&to= with
// RFC3339 bounds, both optional.
func (h *Handler) RouteHistory(c *gin.Context) {
	routeID, err := strconv.ParseInt(c.Param("route_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp format. Use RFC3339."})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp format. Use RFC3339."})
			return
		}
	}

	events, err := h.store.HistoryByRoute(c.Request.Context(), routeID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routeId": routeID,
		"events":  h.historyResponse(events),
	})
}
