package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"terminal-queue-backend/internal/model"
)

// Store defines the interface for all database operations. Every lifecycle
// mutation (OpenEntry, AdvanceStatus, CloseEntry) appends exactly one history
// event in the same transaction; state and audit log commit or roll back
// together.
type Store interface {
	DB() *gorm.DB

	// Reference data lookups.
	VehicleByPlate(ctx context.Context, plate string) (model.Vehicle, error)
	DriverByLicense(ctx context.Context, license string) (model.Driver, error)
	Routes(ctx context.Context, activeOnly bool) ([]model.Route, error)

	// Lifecycle mutations.
	OpenEntry(ctx context.Context, vehicle model.Vehicle, driver model.Driver, routeID int64, now time.Time, ref string) (model.ActiveEntry, error)
	AdvanceStatus(ctx context.Context, entryID int64, newStatus model.EntryStatus, now time.Time, ref string) (model.ActiveEntry, error)
	CloseEntry(ctx context.Context, entryID int64, now time.Time, ref string) (model.ActiveEntry, error)

	// Active-entry reads.
	ActiveEntryByVehicle(ctx context.Context, vehicleID int64) (*model.ActiveEntry, error)
	ActiveEntriesByRoute(ctx context.Context, routeID int64) ([]model.ActiveEntry, error)
	ActiveEntriesGrouped(ctx context.Context) (map[int64][]model.ActiveEntry, error)

	// History ledger reads.
	HistoryByVehicle(ctx context.Context, vehicleID int64) ([]model.HistoryEvent, error)
	HistoryByRoute(ctx context.Context, routeID int64, from, to time.Time) ([]model.HistoryEvent, error)
}

// allowedNext is the strict forward chain of live status transitions. Closure
// after departing happens through CloseEntry, not a fourth status.
var allowedNext = map[model.EntryStatus]model.EntryStatus{
	model.StatusWaiting:  model.StatusBoarding,
	model.StatusBoarding: model.StatusDeparting,
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) VehicleByPlate(ctx context.Context, plate string) (model.Vehicle, error) {
	var vehicle model.Vehicle
	err := s.db.WithContext(ctx).
		Preload("AssignedDriver").
		Preload("Route").
		First(&vehicle, "plate_number = ?", plate).Error
	if err != nil {
		return model.Vehicle{}, err
	}
	return vehicle, nil
}

func (s *gormStore) DriverByLicense(ctx context.Context, license string) (model.Driver, error) {
	var driver model.Driver
	err := s.db.WithContext(ctx).First(&driver, "license_number = ?", license).Error
	if err != nil {
		return model.Driver{}, err
	}
	return driver, nil
}

func (s *gormStore) Routes(ctx context.Context, activeOnly bool) ([]model.Route, error) {
	var routes []model.Route
	q := s.db.WithContext(ctx).Order("sort_order, name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// OpenEntry creates the active entry for a validated gate entry. The caller
// must have passed eligibility validation; the active-entry re-check here is
// defensive and is itself backed by the partial unique index, so a lost race
// still comes back as ErrDuplicateActiveEntry rather than a second open row.
func (s *gormStore) OpenEntry(ctx context.Context, vehicle model.Vehicle, driver model.Driver, routeID int64, now time.Time, ref string) (model.ActiveEntry, error) {
	entry := model.ActiveEntry{
		VehicleID: vehicle.ID,
		DriverID:  driver.ID,
		RouteID:   routeID,
		Status:    model.StatusWaiting,
		EnteredAt: now,
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ActiveEntry{}).
			Where("vehicle_id = ? AND is_active", vehicle.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check active entries for vehicle %d: %w", vehicle.ID, err)
		}
		if count > 0 {
			return ErrDuplicateActiveEntry
		}

		if err := tx.Create(&entry).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateActiveEntry
			}
			return fmt.Errorf("failed to create active entry for vehicle %d: %w", vehicle.ID, err)
		}

		return appendHistory(tx, model.HistoryEvent{
			Kind:       model.HistoryEntry,
			VehicleID:  vehicle.ID,
			DriverID:   driver.ID,
			RouteID:    routeID,
			Status:     model.StatusWaiting,
			OccurredAt: now,
			Ref:        ref,
		})
	})
	if err != nil {
		return model.ActiveEntry{}, err
	}
	return entry, nil
}

// AdvanceStatus moves an active entry one step along the
// waiting -> boarding -> departing chain. Backward moves and skips fail with
// ErrInvalidTransition.
func (s *gormStore) AdvanceStatus(ctx context.Context, entryID int64, newStatus model.EntryStatus, now time.Time, ref string) (model.ActiveEntry, error) {
	var entry model.ActiveEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("failed to load entry %d: %w", entryID, err)
		}
		if !entry.IsActive {
			return ErrNoActiveEntry
		}

		next, ok := allowedNext[entry.Status]
		if !ok || next != newStatus {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, newStatus)
		}

		entry.Status = newStatus
		if newStatus == model.StatusBoarding {
			entry.BoardingStartedAt = &now
		}
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to update entry %d: %w", entryID, err)
		}

		return appendHistory(tx, model.HistoryEvent{
			Kind:       model.HistoryStatusChange,
			VehicleID:  entry.VehicleID,
			DriverID:   entry.DriverID,
			RouteID:    entry.RouteID,
			Status:     newStatus,
			OccurredAt: now,
			Ref:        ref,
		})
	})
	if err != nil {
		return model.ActiveEntry{}, err
	}
	return entry, nil
}

// CloseEntry ends a validated gate exit: the entry leaves the active set and
// keeps its row, so "what was this vehicle's last entry" stays answerable. The
// exit history event records the departed status.
func (s *gormStore) CloseEntry(ctx context.Context, entryID int64, now time.Time, ref string) (model.ActiveEntry, error) {
	var entry model.ActiveEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("failed to load entry %d: %w", entryID, err)
		}
		if !entry.IsActive {
			return ErrNoActiveEntry
		}

		entry.IsActive = false
		entry.ExitedAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to close entry %d: %w", entryID, err)
		}

		return appendHistory(tx, model.HistoryEvent{
			Kind:       model.HistoryExit,
			VehicleID:  entry.VehicleID,
			DriverID:   entry.DriverID,
			RouteID:    entry.RouteID,
			Status:     model.StatusDeparted,
			OccurredAt: now,
			Ref:        ref,
		})
	})
	if err != nil {
		return model.ActiveEntry{}, err
	}
	return entry, nil
}

// ActiveEntryByVehicle returns the vehicle's single active entry, or nil when
// it has none. Finding more than one is a broken invariant and surfaces as
// ErrMultipleActiveEntries, never as a normal lookup result.
func (s *gormStore) ActiveEntryByVehicle(ctx context.Context, vehicleID int64) (*model.ActiveEntry, error) {
	var entries []model.ActiveEntry
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND is_active", vehicleID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	switch len(entries) {
	case 0:
		return nil, nil
	case 1:
		return &entries[0], nil
	default:
		return nil, fmt.Errorf("%w: vehicle %d has %d", ErrMultipleActiveEntries, vehicleID, len(entries))
	}
}

func (s *gormStore) ActiveEntriesByRoute(ctx context.Context, routeID int64) ([]model.ActiveEntry, error) {
	var entries []model.ActiveEntry
	err := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver").
		Where("route_id = ? AND is_active", routeID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ActiveEntriesGrouped returns all active entries keyed by route, for the
// feed builders. It is a plain committed-state read; a write mid-flight just
// means the next poll sees the newer snapshot.
func (s *gormStore) ActiveEntriesGrouped(ctx context.Context) (map[int64][]model.ActiveEntry, error) {
	var entries []model.ActiveEntry
	err := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver").
		Where("is_active = ?", true).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]model.ActiveEntry)
	for _, e := range entries {
		grouped[e.RouteID] = append(grouped[e.RouteID], e)
	}
	return grouped, nil
}

func (s *gormStore) HistoryByVehicle(ctx context.Context, vehicleID int64) ([]model.HistoryEvent, error) {
	var events []model.HistoryEvent
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("occurred_at, id").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *gormStore) HistoryByRoute(ctx context.Context, routeID int64, from, to time.Time) ([]model.HistoryEvent, error) {
	q := s.db.WithContext(ctx).Where("route_id = ?", routeID)
	if !from.IsZero() {
		q = q.Where("occurred_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("occurred_at <= ?", to)
	}

	var events []model.HistoryEvent
	if err := q.Order("occurred_at, id").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// appendHistory writes the audit record inside the mutation's transaction. A
// failure here aborts the whole mutation: an audit event must never be missing
// for a committed state change.
func appendHistory(tx *gorm.DB, event model.HistoryEvent) error {
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append history event for vehicle %d: %w", event.VehicleID, err)
	}
	return nil
}

// isUniqueViolation recognizes unique-index errors from both the translated
// gorm error and the raw postgres/sqlite messages.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
