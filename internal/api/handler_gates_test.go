package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"terminal-queue-backend/config"
	"terminal-queue-backend/internal/db"
	"terminal-queue-backend/internal/model"
	"terminal-queue-backend/internal/store"
)

var manila = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		panic(err)
	}
	return loc
}()

type testEnv struct {
	router *gin.Engine
	gdb    *gorm.DB
	store  store.Store
	now    time.Time
}

// newTestEnv spins up a router over a per-test in-memory database with a
// fixed clock and caching disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	env := &testEnv{
		gdb:   gdb,
		store: store.NewGormStore(gdb),
		now:   time.Date(2026, time.January, 2, 9, 0, 0, 0, manila),
	}

	handler := NewHandler(env.store, manila, nil, nil)
	handler.now = func() time.Time { return env.now }

	cfg := &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}
	env.router = NewRouter(cfg, handler)
	return env
}

func (e *testEnv) seedVehicle(t *testing.T, plate, license string, regExpiry, licExpiry time.Time) (model.Route, model.Driver, model.Vehicle) {
	t.Helper()

	route := model.Route{Name: "Maasin - Sogod " + plate, Origin: "Maasin City", Destination: "Sogod", Active: true}
	require.NoError(t, e.gdb.Create(&route).Error)

	driver := model.Driver{FirstName: "Juan", LastName: "Dela Cruz", LicenseNumber: license, LicenseExpiry: licExpiry}
	require.NoError(t, e.gdb.Create(&driver).Error)

	vehicle := model.Vehicle{
		PlateNumber:        plate,
		VehicleType:        "jeepney",
		RegistrationExpiry: regExpiry,
		AssignedDriverID:   driver.ID,
		RouteID:            &route.ID,
	}
	require.NoError(t, e.gdb.Create(&vehicle).Error)
	return route, driver, vehicle
}

// seedVehicleOnRoute adds another vehicle/driver pair to an existing route.
func (e *testEnv) seedVehicleOnRoute(t *testing.T, plate, license string, routeID int64, expiry time.Time) model.Vehicle {
	t.Helper()

	driver := model.Driver{FirstName: "Pedro", LastName: "Reyes", LicenseNumber: license, LicenseExpiry: expiry}
	require.NoError(t, e.gdb.Create(&driver).Error)

	vehicle := model.Vehicle{
		PlateNumber:        plate,
		VehicleType:        "van",
		RegistrationExpiry: expiry,
		AssignedDriverID:   driver.ID,
		RouteID:            &routeID,
	}
	require.NoError(t, e.gdb.Create(&vehicle).Error)
	return vehicle
}

func (e *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeGate(t *testing.T, w *httptest.ResponseRecorder) gateResponse {
	t.Helper()
	var resp gateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmitEntry_Accepted(t *testing.T) {
	env := newTestEnv(t)
	future := env.now.AddDate(1, 0, 0)
	_, _, vehicle := env.seedVehicle(t, "ABC-1234", "N01-85-123456", future, future)

	w := env.post(t, "/api/gate/entry", gin.H{
		"plate_number":   "abc-1234",
		"license_number": "n01-85-123456",
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeGate(t, w)
	assert.True(t, resp.Accepted)
	assert.NotEmpty(t, resp.Ref)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, model.StatusWaiting, resp.Entry.Status)

	// Exactly one history event, carrying the response ref.
	events, err := env.store.HistoryByVehicle(context.Background(), vehicle.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.HistoryEntry, events[0].Kind)
	assert.Equal(t, resp.Ref, events[0].Ref)
}

// Registration expired 2026-01-01, scanned 2026-01-02: denied. The same
// vehicle scanned a day earlier (expiring "today") is accepted.
func TestSubmitEntry_RegistrationExpiryBoundary(t *testing.T) {
	env := newTestEnv(t)
	regExpiry := time.Date(2026, time.January, 1, 0, 0, 0, 0, manila)
	env.seedVehicle(t, "ABC-123", "N01-85-123456", regExpiry, env.now.AddDate(1, 0, 0))

	env.now = time.Date(2026, time.January, 2, 9, 0, 0, 0, manila)
	w := env.post(t, "/api/gate/entry", gin.H{
		"plate_number":   "ABC-123",
		"license_number": "N01-85-123456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeGate(t, w)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "VehicleRegistrationExpired", resp.Reason)
	assert.NotEmpty(t, resp.Message)

	// No entry and no history event may exist after a denial.
	var count int64
	require.NoError(t, env.gdb.Model(&model.ActiveEntry{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.gdb.Model(&model.HistoryEvent{}).Count(&count).Error)
	assert.Zero(t, count)

	env.now = time.Date(2026, time.January, 1, 9, 0, 0, 0, manila)
	resp = decodeGate(t, env.post(t, "/api/gate/entry", gin.H{
		"plate_number":   "ABC-123",
		"license_number": "N01-85-123456",
	}))
	assert.True(t, resp.Accepted)
}

func TestSubmitEntry_DriverLicenseExpired(t *testing.T) {
	env := newTestEnv(t)
	env.seedVehicle(t, "ABC-1234", "N01-85-123456",
		env.now.AddDate(1, 0, 0), env.now.AddDate(0, 0, -1))

	resp := decodeGate(t, env.post(t, "/api/gate/entry", gin.H{
		"plate_number":   "ABC-1234",
		"license_number": "N01-85-123456",
	}))
	assert.False(t, resp.Accepted)
	assert.Equal(t, "DriverLicenseExpired", resp.Reason)
}

func TestSubmitEntry_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	future := env.now.AddDate(1, 0, 0)
	env.seedVehicle(t, "ABC-1234", "N01-85-123456", future, future)

	body := gin.H{"plate_number": "ABC-1234", "license_number": "N01-85-123456"}

	w := env.post(t, "/api/gate/entry", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeGate(t, w).Accepted)

	w = env.post(t, "/api/gate/entry", body)
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decodeGate(t, w)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "DuplicateActiveEntry", resp.Reason)
}

func TestSubmitEntry_UnknownVehicle(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/api/gate/entry", gin.H{
		"plate_number":   "ZZZ-0000",
		"license_number": "N01-85-123456",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitExit_NoActiveEntry(t *testing.T) {
	env := newTestEnv(t)
	future := env.now.AddDate(1, 0, 0)
	env.seedVehicle(t, "XYZ-999", "N01-90-234567", future, future)

	w := env.post(t, "/api/gate/exit", gin.H{"plate_number": "XYZ-999"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeGate(t, w)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "NoActiveEntry", resp.Reason)
	assert.Equal(t, "XYZ-999 not inside terminal. No active entry found.", resp.Message)
}

func TestSubmitExit_ClosesEntry(t *testing.T) {
	env := newTestEnv(t)
	future := env.now.AddDate(1, 0, 0)
	_, _, vehicle := env.seedVehicle(t, "ABC-1234", "N01-85-123456", future, future)

	body := gin.H{"plate_number": "ABC-1234", "license_number": "N01-85-123456"}
	require.True(t, decodeGate(t, env.post(t, "/api/gate/entry", body)).Accepted)

	env.now = env.now.Add(2 * time.Hour)
	w := env.post(t, "/api/gate/exit", gin.H{"plate_number": "ABC-1234"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeGate(t, w)
	assert.True(t, resp.Accepted)
	require.NotNil(t, resp.Entry)
	assert.False(t, resp.Entry.IsActive)
	require.NotNil(t, resp.Entry.ExitedAt)

	// entry + exit in the ledger; the vehicle can re-enter afterwards.
	events, err := env.store.HistoryByVehicle(context.Background(), vehicle.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.HistoryExit, events[1].Kind)
	assert.Equal(t, model.StatusDeparted, events[1].Status)

	assert.True(t, decodeGate(t, env.post(t, "/api/gate/entry", body)).Accepted)
}

func TestAdvanceStatus_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	future := env.now.AddDate(1, 0, 0)
	env.seedVehicle(t, "ABC-1234", "N01-85-123456", future, future)

	body := gin.H{"plate_number": "ABC-1234", "license_number": "N01-85-123456"}
	entryResp := decodeGate(t, env.post(t, "/api/gate/entry", body))
	require.True(t, entryResp.Accepted)
	entryID := entryResp.Entry.ID

	w := env.post(t, fmt.Sprintf("/api/entries/%d/status", entryID), gin.H{"status": "boarding"})
	require.Equal(t, http.StatusOK, w.Code)

	// Skipping back to boarding again is an invalid transition.
	w = env.post(t, fmt.Sprintf("/api/entries/%d/status", entryID), gin.H{"status": "boarding"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.post(t, fmt.Sprintf("/api/entries/%d/status", entryID), gin.H{"status": "departing"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.post(t, "/api/entries/99999/status", gin.H{"status": "boarding"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
