package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a back-office member who processes orders. Managed elsewhere; orders only reference it.
type Staff struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}
