// Package eligibility decides whether a vehicle/driver pair may enter or exit
// the terminal. It is pure: callers pass in the stored expiry fields and the
// current terminal-local time, and no check performs any I/O.
package eligibility

import (
	"fmt"
	"time"

	"terminal-queue-backend/internal/model"
)

// DenialReason identifies why a gate action was refused.
type DenialReason string

const (
	VehicleRegistrationExpired DenialReason = "VehicleRegistrationExpired"
	DriverLicenseExpired       DenialReason = "DriverLicenseExpired"
	NoActiveEntry              DenialReason = "NoActiveEntry"
)

// Denial is an expected, user-correctable refusal. The message is shown to the
// gate operator verbatim.
type Denial struct {
	Reason  DenialReason
	Message string
}

// dateOf truncates a time to its calendar date in the given location. Expiry
// checks compare dates, not timestamps: a document expiring today is still
// valid today.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ValidateEntry checks whether the vehicle/driver pair may enter. Checks run
// in fixed order and the first failure wins. A nil result means entry is
// allowed.
func ValidateEntry(vehicle model.Vehicle, driver model.Driver, now time.Time, loc *time.Location) *Denial {
	today := dateOf(now, loc)

	if dateOf(vehicle.RegistrationExpiry, loc).Before(today) {
		return &Denial{
			Reason: VehicleRegistrationExpired,
			Message: fmt.Sprintf("%s registration expired on %s.",
				vehicle.PlateNumber, vehicle.RegistrationExpiry.In(loc).Format("January 2, 2006")),
		}
	}

	if dateOf(driver.LicenseExpiry, loc).Before(today) {
		return &Denial{
			Reason: DriverLicenseExpired,
			Message: fmt.Sprintf("License %s expired on %s.",
				driver.LicenseNumber, driver.LicenseExpiry.In(loc).Format("January 2, 2006")),
		}
	}

	return nil
}

// ValidateExit checks whether the vehicle may exit. hasActiveEntry is the
// result of the caller's active-entry lookup; more than one active entry is a
// consistency error the store surfaces separately, never a denial.
func ValidateExit(plateNumber string, hasActiveEntry bool) *Denial {
	if !hasActiveEntry {
		return &Denial{
			Reason:  NoActiveEntry,
			Message: fmt.Sprintf("%s not inside terminal. No active entry found.", plateNumber),
		}
	}
	return nil
}
