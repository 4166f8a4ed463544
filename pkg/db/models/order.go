package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

// Order is the storefront purchase aggregate. Items, tracking events and
// ratings are owned rows in their own tables.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	StaffID         *uuid.UUID           `gorm:"column:staff_id;type:uuid"`
	Status          enums.OrderStatus    `gorm:"column:order_status;not null;default:1"`
	PaymentType     enums.PaymentType    `gorm:"column:payment_type;not null"`
	CancelReason    *string              `gorm:"column:cancel_reason"`
	Street          string               `gorm:"column:street;not null"`
	City            string               `gorm:"column:city;not null"`
	State           string               `gorm:"column:state;not null"`
	OrderDate       time.Time            `gorm:"column:order_date;not null"`
	RequireDate     *time.Time           `gorm:"column:require_date"`
	ShippingDate    *time.Time           `gorm:"column:shipping_date"`
	IsDelete        bool                 `gorm:"column:is_delete;not null;default:false"`
	Customer        *Customer            `gorm:"foreignKey:CustomerID"`
	Staff           *Staff               `gorm:"foreignKey:StaffID"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingHistory []OrderTrackingEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Ratings         []OrderRating        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}
