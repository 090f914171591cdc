package model

import "time"

// HistoryKind is the kind of audited lifecycle event.
type HistoryKind string

const (
	HistoryEntry        HistoryKind = "entry"
	HistoryStatusChange HistoryKind = "status_change"
	HistoryExit         HistoryKind = "exit"
)

// HistoryEvent is an append-only audit record (cold table). Written exactly
// once per successful lifecycle mutation, in the same transaction, and never
// updated afterwards. Ref is the gate-scan correlation id returned to the
// caller that triggered the mutation.
type HistoryEvent struct {
	ID         int64       `gorm:"autoIncrement;primaryKey" json:"id"`
	Kind       HistoryKind `gorm:"size:16;not null" json:"kind"`
	VehicleID  int64       `gorm:"index;not null" json:"vehicleId"`
	DriverID   int64       `gorm:"not null" json:"driverId"`
	RouteID    int64       `gorm:"index;not null" json:"routeId"`
	Status     EntryStatus `gorm:"size:16;not null" json:"status"`
	OccurredAt time.Time   `gorm:"index;not null" json:"occurredAt"`
	Ref        string      `gorm:"size:36;not null" json:"ref"`

	// Associations
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
	Route   Route   `gorm:"foreignKey:RouteID" json:"-"`
}
