package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"terminal-queue-backend/internal/eligibility"
	"terminal-queue-backend/internal/model"
	"terminal-queue-backend/internal/parse"
	"terminal-queue-backend/internal/store"
)

type submitEntryRequest struct {
	PlateNumber   string `json:"plate_number" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	RouteID       *int64 `json:"route_id"`
}

type submitExitRequest struct {
	PlateNumber string `json:"plate_number" binding:"required"`
}

// gateResponse is the common shape returned to gate scanner clients. Denials
// carry the validator's reason verbatim; accepted responses carry the
// resulting entry and a correlation ref matching the audit record.
type gateResponse struct {
	Accepted bool               `json:"accepted"`
	Reason   string             `json:"reason,omitempty"`
	Message  string             `json:"message"`
	Ref      string             `json:"ref,omitempty"`
	Entry    *model.ActiveEntry `json:"entry,omitempty"`
}

func denialResponse(c *gin.Context, d *eligibility.Denial) {
	c.JSON(http.StatusOK, gateResponse{
		Accepted: false,
		Reason:   string(d.Reason),
		Message:  d.Message,
	})
}

// SubmitEntry handles an entry gate scan: eligibility first, then the
// open-entry mutation. Validation performs no writes; nothing is mutated on a
// denial.
func (h *Handler) SubmitEntry(c *gin.Context) {
	var req submitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plate, err := parse.PlateNumber(req.PlateNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	license, err := parse.LicenseNumber(req.LicenseNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	vehicle, err := h.store.VehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("vehicle %s is not registered", plate)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up vehicle"})
		}
		return
	}

	driver, err := h.store.DriverByLicense(ctx, license)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("license %s is not registered", license)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up driver"})
		}
		return
	}

	now := h.now()
	if denial := eligibility.ValidateEntry(vehicle, driver, now, h.loc); denial != nil {
		denialResponse(c, denial)
		return
	}

	routeID, ok := resolveRoute(req.RouteID, vehicle)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("vehicle %s has no route assignment", plate)})
		return
	}

	ref := uuid.NewString()
	entry, err := h.store.OpenEntry(ctx, vehicle, driver, routeID, now, ref)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateActiveEntry) {
			c.JSON(http.StatusConflict, gateResponse{
				Accepted: false,
				Reason:   "DuplicateActiveEntry",
				Message:  fmt.Sprintf("%s is already inside the terminal.", plate),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "entry could not be recorded, please rescan"})
		return
	}

	c.JSON(http.StatusOK, gateResponse{
		Accepted: true,
		Message:  fmt.Sprintf("%s checked in. Queue for route %d.", plate, routeID),
		Ref:      ref,
		Entry:    &entry,
	})
}

// resolveRoute picks the requested route, falling back to the vehicle's
// assignment.
func resolveRoute(requested *int64, vehicle model.Vehicle) (int64, bool) {
	if requested != nil {
		return *requested, true
	}
	if vehicle.RouteID != nil {
		return *vehicle.RouteID, true
	}
	return 0, false
}

// SubmitExit handles an exit gate scan. A vehicle with no active entry gets a
// plain denial; more than one active entry means a broken invariant and is a
// hard failure.
func (h *Handler) SubmitExit(c *gin.Context) {
	var req submitExitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plate, err := parse.PlateNumber(req.PlateNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	vehicle, err := h.store.VehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("vehicle %s is not registered", plate)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up vehicle"})
		}
		return
	}

	active, err := h.store.ActiveEntryByVehicle(ctx, vehicle.ID)
	if err != nil {
		if errors.Is(err, store.ErrMultipleActiveEntries) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up active entry"})
		return
	}

	if denial := eligibility.ValidateExit(plate, active != nil); denial != nil {
		denialResponse(c, denial)
		return
	}

	ref := uuid.NewString()
	entry, err := h.store.CloseEntry(ctx, active.ID, h.now(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "exit could not be recorded, please rescan"})
		return
	}

	c.JSON(http.StatusOK, gateResponse{
		Accepted: true,
		Message:  fmt.Sprintf("%s checked out. Safe travels.", plate),
		Ref:      ref,
		Entry:    &entry,
	})
}
