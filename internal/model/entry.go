package model

import "time"

// EntryStatus is the closed set of statuses an entry moves through. Live
// entries only ever hold waiting, boarding or departing; departed exists for
// history records written on exit and for history-derived display contexts.
type EntryStatus string

const (
	StatusWaiting   EntryStatus = "waiting"
	StatusBoarding  EntryStatus = "boarding"
	StatusDeparting EntryStatus = "departing"
	StatusDeparted  EntryStatus = "departed"
)

// ActiveEntry is the single live record of a vehicle currently inside the
// terminal (hot table). At most one row per vehicle may have IsActive set; a
// partial unique index enforces this at the storage layer. Rows are never
// deleted: closing an entry clears IsActive and records the exit time, so the
// last entry of a vehicle stays queryable.
type ActiveEntry struct {
	ID                int64       `gorm:"primaryKey" json:"id"`
	VehicleID         int64       `gorm:"index;not null" json:"vehicleId"`
	DriverID          int64       `gorm:"not null" json:"driverId"`
	RouteID           int64       `gorm:"index;not null" json:"routeId"`
	Status            EntryStatus `gorm:"size:16;not null" json:"status"`
	EnteredAt         time.Time   `gorm:"not null" json:"enteredAt"`
	BoardingStartedAt *time.Time  `json:"boardingStartedAt"`
	ExitedAt          *time.Time  `json:"exitedAt"`
	IsActive          bool        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt         time.Time   `gorm:"not null" json:"-"`
	UpdatedAt         time.Time   `gorm:"not null" json:"-"`

	// Associations
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
	Driver  Driver  `gorm:"foreignKey:DriverID" json:"-"`
	Route   Route   `gorm:"foreignKey:RouteID" json:"-"`
}
