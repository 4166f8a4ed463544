package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/pagination"
)

// Repository defines persistence operations for orders and their owned rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, cancelReason *string) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AppendTracking(ctx context.Context, event *models.OrderTrackingEvent) error
	UpsertRating(ctx context.Context, rating *models.OrderRating) error
}

// ListFilters are the normalized findAllOrder filters.
type ListFilters struct {
	Phone       string
	Name        string
	Status      *enums.OrderStatus
	PaymentType *enums.PaymentType
	SortColumn  string
	Descending  bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Customer", "Staff", "TrackingHistory", "Ratings").Create(order).Error
}

func (r *repository) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Staff").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("TrackingHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}})
		}).
		Preload("Ratings", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.populated(ctx).
		Where("id = ? AND is_delete = ?", id, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate row-locks the order so concurrent writers serialize. Items are
// loaded because ownership and rating checks need them.
func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_delete = ?", id, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("position ASC").
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.populated(ctx).
		Where("customer_id = ? AND is_delete = ?", customerID, false).
		Order("order_date DESC").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// List joins customers so phone and name filters apply before counting and
// paging.
func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Order{}).
			Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("orders.is_delete = ?", false)
		if phone := strings.TrimSpace(filters.Phone); phone != "" {
			q = q.Where(`LOWER(customers.phone) LIKE LOWER(?) ESCAPE '\'`, containsPattern(phone))
		}
		if name := strings.TrimSpace(filters.Name); name != "" {
			q = q.Where(`LOWER(customers.name) LIKE LOWER(?) ESCAPE '\'`, containsPattern(name))
		}
		if filters.Status != nil {
			q = q.Where("orders.order_status = ?", *filters.Status)
		}
		if filters.PaymentType != nil {
			q = q.Where("orders.payment_type = ?", *filters.PaymentType)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Order{}, 0, nil
	}

	var ids []uuid.UUID
	err := filtered().
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "orders", Name: filters.SortColumn},
			Desc:   filters.Descending,
		}).
		Order("orders.id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.Order{}, total, nil
	}

	var rows []models.Order
	if err := r.populated(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]models.Order, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			orders = append(orders, row)
		}
	}
	return orders, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, cancelReason *string) error {
	return r.Update(ctx, id, map[string]any{
		"order_status":  status,
		"cancel_reason": cancelReason,
	})
}

// Update applies column updates to a live order. No matching row yields
// gorm.ErrRecordNotFound.
func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_delete = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.Update(ctx, id, map[string]any{"is_delete": true})
}

func (r *repository) AppendTracking(ctx context.Context, event *models.OrderTrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// UpsertRating replaces the stars, comment and media of an existing
// (order, product, customer) rating.
func (r *repository) UpsertRating(ctx context.Context, rating *models.OrderRating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "order_id"},
				{Name: "product_id"},
				{Name: "customer_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "comment", "images", "videos", "updated_at"}),
		}).
		Create(rating).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE substring pattern that matches term literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
