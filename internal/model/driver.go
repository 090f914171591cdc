package model

import "time"

// Driver represents a registered driver. Reference data, read-only to the
// lifecycle engine; only the license number and expiry participate in
// eligibility decisions.
type Driver struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:128;not null" json:"firstName"`
	LastName      string    `gorm:"size:128;not null" json:"lastName"`
	LicenseNumber string    `gorm:"uniqueIndex;size:64;not null" json:"licenseNumber"`
	LicenseExpiry time.Time `gorm:"not null" json:"licenseExpiry"`
	MobileNumber  string    `gorm:"size:32" json:"mobileNumber"`
	CreatedAt     time.Time `gorm:"not null" json:"-"`
	UpdatedAt     time.Time `gorm:"not null" json:"-"`
}

// FullName returns the driver's display name.
func (d Driver) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}
