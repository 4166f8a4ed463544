package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/storefront-orders/pkg/db"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
)

const guestSavepoint = "guest_customer"

// GuestInput is the contact block a guest submits at checkout.
type GuestInput struct {
	Name   string
	Phone  string
	Email  string
	Street string
	City   string
	State  string
}

// Service resolves the customer behind an order.
type Service interface {
	// ResolveGuest returns the customer matching the guest's phone or email,
	// creating one when nothing matches. It joins tx when tx is an open
	// transaction and runs on its own otherwise.
	ResolveGuest(ctx context.Context, tx *gorm.DB, input GuestInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type service struct {
	repo Repository
}

// NewService builds the customer directory.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ResolveGuest(ctx context.Context, tx *gorm.DB, input GuestInput) (*models.Customer, error) {
	phone := strings.TrimSpace(input.Phone)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if phone == "" && email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone or email is required")
	}

	repo := s.repo.WithTx(tx)
	existing, err := repo.FindByPhoneOrEmail(ctx, phone, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer := &models.Customer{
		Name:   name,
		Phone:  optionalString(phone),
		Email:  optionalString(email),
		Street: strings.TrimSpace(input.Street),
		City:   strings.TrimSpace(input.City),
		State:  strings.TrimSpace(input.State),
	}
	savepoint := inTransaction(tx)
	if savepoint {
		if err := tx.SavePoint(guestSavepoint).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer savepoint")
		}
	}
	created, err := repo.Create(ctx, customer)
	if err != nil {
		// A concurrent guest checkout with the same contact won the insert.
		if dbpkg.IsUniqueViolation(err, "") {
			if savepoint {
				if rbErr := tx.RollbackTo(guestSavepoint).Error; rbErr != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "rollback customer savepoint")
				}
			}
			if existing, findErr := repo.FindByPhoneOrEmail(ctx, phone, email); findErr == nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

// inTransaction reports whether tx is bound to an open transaction. Savepoints
// are only valid there; a plain handle lets gorm wrap the insert itself.
func inTransaction(tx *gorm.DB) bool {
	if tx == nil || tx.Statement == nil {
		return false
	}
	_, ok := tx.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
