package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"terminal-queue-backend/internal/notification"
	"terminal-queue-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	loc     *time.Location
	webpush *webpush.Options
	pool    *notification.WorkerPool

	// now is the clock used for eligibility and timestamps. Overridable in
	// tests so date-boundary scenarios are deterministic.
	now func() time.Time
}

// NewHandler creates a new API handler. pool may be nil when push
// notifications are disabled.
func NewHandler(s store.Store, loc *time.Location, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		loc:     loc,
		webpush: webpushOptions,
		pool:    pool,
		now:     time.Now,
	}
}
