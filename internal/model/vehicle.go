package model

import "time"

// Vehicle represents a registered vehicle. Reference data, read-only to the
// lifecycle engine. PlateNumber is stored normalized (trimmed, upper case).
type Vehicle struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	PlateNumber        string    `gorm:"uniqueIndex;size:32;not null" json:"plateNumber"`
	VehicleName        string    `gorm:"size:128" json:"vehicleName"`
	VehicleType        string    `gorm:"size:32;not null" json:"vehicleType"`
	SeatCapacity       int       `json:"seatCapacity"`
	RegistrationExpiry time.Time `gorm:"not null" json:"registrationExpiry"`
	AssignedDriverID   int64     `gorm:"index;not null" json:"assignedDriverId"`
	RouteID            *int64    `gorm:"index" json:"routeId"`
	CreatedAt          time.Time `gorm:"not null" json:"-"`
	UpdatedAt          time.Time `gorm:"not null" json:"-"`

	// Associations
	AssignedDriver Driver `gorm:"foreignKey:AssignedDriverID" json:"-"`
	Route          *Route `gorm:"foreignKey:RouteID" json:"-"`
}
