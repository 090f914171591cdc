package model

import "time"

// Route represents an externally configured terminal route. The engine treats
// it as reference data: routes partition the queue and the public feed but are
// never created or modified by lifecycle operations.
type Route struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Origin      string    `gorm:"size:128" json:"origin"`
	Destination string    `gorm:"size:128;not null" json:"destination"`
	SortOrder   int       `gorm:"not null;default:0" json:"sortOrder"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`

	// Associations
	Vehicles []Vehicle `gorm:"foreignKey:RouteID" json:"-"`
}
