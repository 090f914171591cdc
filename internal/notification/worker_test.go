package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"terminal-queue-backend/internal/db"
	"terminal-queue-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// seedBoardingEntry creates a route, vehicle, driver, a boarding entry and one
// subscription to the route, returning the entry and subscription.
func seedBoardingEntry(t *testing.T, gdb *gorm.DB, endpoint string) (model.ActiveEntry, model.PushSubscription) {
	t.Helper()

	route := model.Route{Name: "Maasin - Sogod", Destination: "Sogod", Active: true}
	require.NoError(t, gdb.Create(&route).Error)

	driver := model.Driver{FirstName: "Juan", LastName: "Dela Cruz", LicenseNumber: "N01-85-123456", LicenseExpiry: time.Now().AddDate(1, 0, 0)}
	require.NoError(t, gdb.Create(&driver).Error)

	vehicle := model.Vehicle{PlateNumber: "ABC-1234", VehicleType: "jeepney", RegistrationExpiry: time.Now().AddDate(1, 0, 0), AssignedDriverID: driver.ID}
	require.NoError(t, gdb.Create(&vehicle).Error)

	now := time.Now().UTC()
	entry := model.ActiveEntry{
		VehicleID:         vehicle.ID,
		DriverID:          driver.ID,
		RouteID:           route.ID,
		Status:            model.StatusBoarding,
		EnteredAt:         now.Add(-time.Hour),
		BoardingStartedAt: &now,
		IsActive:          true,
	}
	require.NoError(t, gdb.Create(&entry).Error)

	sub := model.PushSubscription{Endpoint: endpoint, P256DH: "test_p256dh", Auth: "test_auth"}
	require.NoError(t, gdb.Create(&sub).Error)
	require.NoError(t, gdb.Model(&sub).Association("Routes").Append(&route))

	return entry, sub
}

func TestWorkerPool_Dispatch(t *testing.T) {
	gdb := newTestDB(t)
	wp := NewWorkerPool(1, gdb, &webpush.Options{})

	wp.Dispatch(123)

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_AnnouncesBoarding(t *testing.T) {
	gdb := newTestDB(t)
	entry, _ := seedBoardingEntry(t, gdb, "https://example.com/push")

	wp := NewWorkerPool(1, gdb, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "ABC-1234 is now boarding for Maasin - Sogod.", string(payload))
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(entry.ID)
	wg.Wait()
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	gdb := newTestDB(t)
	entry, sub := seedBoardingEntry(t, gdb, "https://example.com/expired")

	wp := NewWorkerPool(1, gdb, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(entry.ID)
	wg.Wait()

	// The 410 response triggers cleanup; give the worker a moment to delete.
	assert.Eventually(t, func() bool {
		var count int64
		if err := gdb.Model(&model.PushSubscription{}).Where("endpoint = ?", sub.Endpoint).Count(&count).Error; err != nil {
			return false
		}
		return count == 0
	}, 2*time.Second, 20*time.Millisecond)
}
