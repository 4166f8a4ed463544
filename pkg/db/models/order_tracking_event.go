package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

// OrderTrackingEvent is one append-only entry of an order's status history.
type OrderTrackingEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;not null"`
	Description string            `gorm:"column:description;not null;default:''"`
	ChangedBy   *uuid.UUID        `gorm:"column:changed_by;type:uuid"`
	Timestamp   time.Time         `gorm:"column:timestamp;not null"`
}

func (e *OrderTrackingEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return nil
}
