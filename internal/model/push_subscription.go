package model

import "time"

// PushSubscription holds a browser push subscription. Subscribers pick the
// routes they want "now boarding" notifications for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Routes []*Route `gorm:"many2many:subscription_route_mapping;"`
}
