package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem snapshots a product at order time so later catalog edits do not
// change historic orders.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Position    int             `gorm:"column:position;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Thumbnail   *string         `gorm:"column:thumbnail"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(5,2);not null;default:0"`
	PriceEnd    decimal.Decimal `gorm:"column:price_end;type:numeric(14,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is price_end multiplied by quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceEnd.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
