package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/types"
)

// OrderRating is a customer review of one product within one order. It is
// unique per (order, product, customer).
type OrderRating struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	CustomerID uuid.UUID        `gorm:"column:customer_id;type:uuid;not null"`
	Stars      int              `gorm:"column:stars;not null"`
	Comment    *string          `gorm:"column:comment"`
	Images     types.StringList `gorm:"column:images;type:jsonb;not null"`
	Videos     types.StringList `gorm:"column:videos;type:jsonb;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *OrderRating) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
