package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-queue-backend/internal/model"
)

func date(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func TestValidateEntry(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	now := time.Date(2026, time.January, 2, 9, 30, 0, 0, loc)

	testCases := []struct {
		name           string
		regExpiry      time.Time
		licenseExpiry  time.Time
		expectedReason DenialReason
	}{
		{
			name:          "both valid",
			regExpiry:     date(2027, time.January, 1, loc),
			licenseExpiry: date(2027, time.January, 1, loc),
		},
		{
			name:          "registration expiring today is still valid",
			regExpiry:     date(2026, time.January, 2, loc),
			licenseExpiry: date(2027, time.January, 1, loc),
		},
		{
			name:           "registration expired yesterday",
			regExpiry:      date(2026, time.January, 1, loc),
			licenseExpiry:  date(2027, time.January, 1, loc),
			expectedReason: VehicleRegistrationExpired,
		},
		{
			name:           "license expired",
			regExpiry:      date(2027, time.January, 1, loc),
			licenseExpiry:  date(2025, time.December, 31, loc),
			expectedReason: DriverLicenseExpired,
		},
		{
			name:           "both expired reports vehicle first",
			regExpiry:      date(2026, time.January, 1, loc),
			licenseExpiry:  date(2026, time.January, 1, loc),
			expectedReason: VehicleRegistrationExpired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			vehicle := model.Vehicle{PlateNumber: "ABC-123", RegistrationExpiry: tc.regExpiry}
			driver := model.Driver{LicenseNumber: "N01-85-123456", LicenseExpiry: tc.licenseExpiry}

			denial := ValidateEntry(vehicle, driver, now, loc)
			if tc.expectedReason == "" {
				assert.Nil(t, denial)
				return
			}
			require.NotNil(t, denial)
			assert.Equal(t, tc.expectedReason, denial.Reason)
			assert.NotEmpty(t, denial.Message)
		})
	}
}

// Expiry stored as a UTC midnight date must still compare by terminal-local
// calendar date, not by instant.
func TestValidateEntry_UTCStoredExpiry(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 2026-01-02 00:00 UTC is already 08:00 on Jan 2 in Manila.
	vehicle := model.Vehicle{
		PlateNumber:        "ABC-123",
		RegistrationExpiry: time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
	driver := model.Driver{LicenseExpiry: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)}

	now := time.Date(2026, time.January, 2, 23, 0, 0, 0, loc)
	assert.Nil(t, ValidateEntry(vehicle, driver, now, loc))

	now = time.Date(2026, time.January, 3, 0, 30, 0, 0, loc)
	denial := ValidateEntry(vehicle, driver, now, loc)
	require.NotNil(t, denial)
	assert.Equal(t, VehicleRegistrationExpired, denial.Reason)
}

func TestValidateExit(t *testing.T) {
	assert.Nil(t, ValidateExit("ABC-123", true))

	denial := ValidateExit("XYZ-999", false)
	if assert.NotNil(t, denial) {
		assert.Equal(t, NoActiveEntry, denial.Reason)
		assert.Equal(t, "XYZ-999 not inside terminal. No active entry found.", denial.Message)
	}
}
