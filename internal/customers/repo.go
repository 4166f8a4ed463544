package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/db/models"
)

// ErrNoContact is returned when a lookup has neither phone nor email.
var ErrNoContact = errors.New("phone or email required")

// Repository defines persistence operations for the customers table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByPhoneOrEmail(ctx context.Context, phone, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPhoneOrEmail matches on either contact. A phone match wins when the
// two contacts point at different customers.
func (r *repository) FindByPhoneOrEmail(ctx context.Context, phone, email string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))
	if phone == "" && email == "" {
		return nil, ErrNoContact
	}

	q := r.db.WithContext(ctx).Model(&models.Customer{})
	switch {
	case phone != "" && email != "":
		q = q.Where("phone = ? OR LOWER(email) = ?", phone, email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		q = q.Where("LOWER(email) = ?", email)
	}

	// Unique indexes on each contact bound the result to two rows.
	var matches []models.Customer
	if err := q.Order("created_at ASC").Limit(2).Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range matches {
		if phone != "" && matches[i].Phone != nil && *matches[i].Phone == phone {
			return &matches[i], nil
		}
	}
	return &matches[0], nil
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}
