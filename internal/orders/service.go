package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/internal/customers"
	"github.com/angelmondragon/storefront-orders/internal/realtime"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-orders/pkg/pagination"
	"github.com/angelmondragon/storefront-orders/pkg/types"
)

const (
	receivedDescription = "received by customer"
	cancelPrefix        = "cancelled by customer: "
	staffCancelReason   = "cancelled by staff"
)

var sortColumns = map[string]string{
	"order_date":    "order_date",
	"created_at":    "created_at",
	"order_status":  "order_status",
	"payment_type":  "payment_type",
	"require_date":  "require_date",
	"shipping_date": "shipping_date",
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type customerDirectory interface {
	ResolveGuest(ctx context.Context, tx *gorm.DB, input customers.GuestInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Broadcaster pushes order events to realtime subscribers.
type Broadcaster interface {
	Ready() error
	PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event realtime.OrderEvent) error
}

// Service is the order lifecycle manager.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*models.Order, error)
	ConfirmReceived(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error)
	AddRating(ctx context.Context, input RatingInput) (*models.Order, error)
	List(ctx context.Context, query ListQuery) (*OrderList, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	GetStatus(ctx context.Context, orderID uuid.UUID) (*StatusView, error)
	Update(ctx context.Context, orderID uuid.UUID, input UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

// Options tune the service behaviour.
type Options struct {
	// StrictTransitions enforces the forward-only transition table. When false
	// any valid status other than the current one is accepted.
	StrictTransitions bool
	DefaultPageSize   int
	Metrics           *metrics.OrderMetrics
	Logger            *logger.Logger
}

type service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	customers   customerDirectory
	broadcaster Broadcaster
	opts        Options
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the order service. Every dependency is required.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, customers customerDirectory, broadcaster Broadcaster, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer directory required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("realtime broadcaster required")
	}
	if b, ok := broadcaster.(*realtime.Broadcaster); ok && b == nil {
		return nil, fmt.Errorf("realtime broadcaster required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        repo,
		tx:          tx,
		outbox:      outbox,
		customers:   customers,
		broadcaster: broadcaster,
		opts:        opts,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, s.reject("create", err)
	}
	if !input.PaymentType.IsValid() {
		return nil, s.reject("create", pkgerrors.New(pkgerrors.CodeValidation, "payment_type is missing or unknown"))
	}
	guest := input.CustomerID == nil
	if guest && input.Customer == nil {
		return nil, s.reject("create", pkgerrors.New(pkgerrors.CodeValidation, "customer information is required"))
	}

	var known *models.Customer
	if !guest {
		known, err = s.customers.Get(ctx, *input.CustomerID)
		if err != nil {
			return nil, s.reject("create", err)
		}
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customer := known
		if guest {
			resolved, err := s.customers.ResolveGuest(ctx, tx, customers.GuestInput{
				Name:   input.Customer.Name,
				Phone:  input.Customer.Phone,
				Email:  input.Customer.Email,
				Street: input.Street,
				City:   input.City,
				State:  input.State,
			})
			if err != nil {
				return err
			}
			customer = resolved
		}

		street, city, state := shippingAddress(input, customer)
		if street == "" || city == "" || state == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "street, city and state are required")
		}

		order = &models.Order{
			CustomerID:  customer.ID,
			Status:      enums.OrderStatusConfirmed,
			PaymentType: input.PaymentType,
			Street:      street,
			City:        city,
			State:       state,
			OrderDate:   s.now(),
			RequireDate: input.RequireDate,
			Items:       items,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.CustomerID, enums.ActorRoleCustomer),
			Data:          createdPayload(order, customer),
			OccurredAt:    order.OrderDate,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created")
		}
		return nil
	})
	if err != nil {
		return nil, s.reject("create", err)
	}

	s.opts.Metrics.IncCreated(paymentLabel(input.PaymentType), guest)
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "guest", guest), "order created")
	return s.load(ctx, order.ID)
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, s.reject("update_status", pkgerrors.New(pkgerrors.CodeValidation, "order_status is unknown"))
	}
	if err := s.broadcaster.Ready(); err != nil {
		return nil, s.reject("update_status", err)
	}

	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		from = order.Status
		if !s.canTransition(from, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot change order status from %s to %s", from.Title(), input.Status.Title()))
		}

		description := strings.TrimSpace(input.Description)
		var reason *string
		if input.Status == enums.OrderStatusCancelled {
			text := description
			if text == "" {
				text = staffCancelReason
			}
			reason = &text
		}
		now := s.now()
		if err := s.writeTransition(ctx, repo, order, input.Status, description, reason, input.ActorID, now); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventOrderStatusChanged, order.ID, actorRef(input.ActorID, enums.ActorRoleStaff), payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			From:        from,
			To:          input.Status,
			Description: description,
			ChangedAt:   now,
		})
	})
	if err != nil {
		return nil, s.reject("update_status", err)
	}

	s.opts.Metrics.IncTransition(statusLabel(from), statusLabel(input.Status))
	return s.loadAndPush(ctx, input.OrderID)
}

func (s *service) Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*models.Order, error) {
	if err := s.broadcaster.Ready(); err != nil {
		return nil, s.reject("cancel", err)
	}

	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "order does not belong to customer")
		}
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "cancel_reason is required")
		}
		if !order.Status.IsCustomerCancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s can no longer be cancelled", order.Status.Title()))
		}

		from = order.Status
		now := s.now()
		if err := s.writeTransition(ctx, repo, order, enums.OrderStatusCancelled, cancelPrefix+trimmed, &trimmed, &customerID, now); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventOrderCanceled, order.ID, actorRef(&customerID, enums.ActorRoleCustomer), payloads.OrderCanceledEvent{
			OrderID:    order.ID,
			CustomerID: customerID,
			From:       from,
			Reason:     trimmed,
			CanceledAt: now,
		})
	})
	if err != nil {
		return nil, s.reject("cancel", err)
	}

	s.opts.Metrics.IncTransition(statusLabel(from), statusLabel(enums.OrderStatusCancelled))
	return s.loadAndPush(ctx, orderID)
}

func (s *service) ConfirmReceived(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	if err := s.broadcaster.Ready(); err != nil {
		return nil, s.reject("confirm_received", err)
	}

	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "order does not belong to customer")
		}
		switch order.Status {
		case enums.OrderStatusDelivered:
			return nil
		case enums.OrderStatusShipping:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s cannot be confirmed as received", order.Status.Title()))
		}

		now := s.now()
		if err := s.writeTransition(ctx, repo, order, enums.OrderStatusDelivered, receivedDescription, nil, &customerID, now); err != nil {
			return err
		}
		changed = true
		return s.emit(ctx, tx, enums.EventOrderReceived, order.ID, actorRef(&customerID, enums.ActorRoleCustomer), payloads.OrderReceivedEvent{
			OrderID:    order.ID,
			CustomerID: customerID,
			ReceivedAt: now,
		})
	})
	if err != nil {
		return nil, s.reject("confirm_received", err)
	}
	if !changed {
		return s.load(ctx, orderID)
	}

	s.opts.Metrics.IncTransition(statusLabel(enums.OrderStatusShipping), statusLabel(enums.OrderStatusDelivered))
	return s.loadAndPush(ctx, orderID)
}

func (s *service) AddRating(ctx context.Context, input RatingInput) (*models.Order, error) {
	switch {
	case input.OrderID == uuid.Nil:
		return nil, s.reject("rating", pkgerrors.New(pkgerrors.CodeValidation, "orderId is required"))
	case input.ProductID == uuid.Nil:
		return nil, s.reject("rating", pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
	case input.Stars < 1 || input.Stars > 5:
		return nil, s.reject("rating", pkgerrors.New(pkgerrors.CodeValidation, "stars must be between 1 and 5"))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "order does not belong to customer")
		}
		if !containsProduct(order.Items, input.ProductID) {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is not part of this order")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be rated")
		}

		rating := &models.OrderRating{
			OrderID:    order.ID,
			ProductID:  input.ProductID,
			CustomerID: input.CustomerID,
			Stars:      input.Stars,
			Comment:    input.Comment,
			Images:     types.StringList(input.Images),
			Videos:     types.StringList(input.Videos),
		}
		if err := repo.UpsertRating(ctx, rating); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rating")
		}
		return s.emit(ctx, tx, enums.EventOrderRated, order.ID, actorRef(&input.CustomerID, enums.ActorRoleCustomer), payloads.OrderRatedEvent{
			OrderID:    order.ID,
			ProductID:  input.ProductID,
			CustomerID: input.CustomerID,
			Stars:      input.Stars,
		})
	})
	if err != nil {
		return nil, s.reject("rating", err)
	}
	return s.load(ctx, input.OrderID)
}

func (s *service) List(ctx context.Context, query ListQuery) (*OrderList, error) {
	sortKey := strings.ToLower(strings.TrimSpace(query.SortBy))
	if sortKey == "" {
		sortKey = "order_date"
	}
	column, ok := sortColumns[sortKey]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort field "+query.SortBy)
	}
	descending := true
	switch strings.ToLower(strings.TrimSpace(query.SortOrder)) {
	case "", "desc":
	case "asc":
		descending = false
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort order must be asc or desc")
	}
	if query.Status != nil && !query.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_status is unknown")
	}
	if query.PaymentType != nil && !query.PaymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_type is unknown")
	}

	params := pagination.Params{Page: query.Page, Limit: query.Limit}.Normalize(s.opts.DefaultPageSize)
	rows, total, err := s.repo.List(ctx, ListFilters{
		Phone:       query.Phone,
		Name:        query.Name,
		Status:      query.Status,
		PaymentType: query.PaymentType,
		SortColumn:  column,
		Descending:  descending,
	}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{
		Orders: NewOrderViews(rows),
		Page: types.Page{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: pagination.TotalPages(total, params.Limit),
		},
	}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.load(ctx, orderID)
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return orders, nil
}

func (s *service) GetStatus(ctx context.Context, orderID uuid.UUID) (*StatusView, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := NewStatusView(order)
	return &view, nil
}

func (s *service) Update(ctx context.Context, orderID uuid.UUID, input UpdateOrderRequest) (*models.Order, error) {
	updates := map[string]any{}
	for column, value := range map[string]*string{"street": input.Street, "city": input.City, "state": input.State} {
		if value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, column+" cannot be empty")
		}
		updates[column] = trimmed
	}
	if input.PaymentType != nil {
		payment, err := enums.ParsePaymentType(*input.PaymentType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment_type is unknown")
		}
		updates["payment_type"] = payment
	}
	if input.StaffID.Set {
		updates["staff_id"] = input.StaffID.Value
	}
	if input.RequireDate.Set {
		updates["require_date"] = input.RequireDate.Value
	}
	if input.ShippingDate.Set {
		updates["shipping_date"] = input.ShippingDate.Value
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}

	if err := s.repo.Update(ctx, orderID, updates); err != nil {
		return nil, mapRepoError(err, "update order")
	}
	return s.load(ctx, orderID)
}

func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, orderID); err != nil {
		return mapRepoError(err, "delete order")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order soft deleted")
	return nil
}

func (s *service) canTransition(from, to enums.OrderStatus) bool {
	if s.opts.StrictTransitions {
		return from.CanTransitionTo(to)
	}
	return from.IsValid() && to.IsValid() && from != to
}

func (s *service) lockOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindForUpdate(ctx, orderID)
	if err != nil {
		return nil, mapRepoError(err, "load order")
	}
	return order, nil
}

func (s *service) writeTransition(ctx context.Context, repo Repository, order *models.Order, to enums.OrderStatus, description string, reason *string, actor *uuid.UUID, at time.Time) error {
	if err := repo.UpdateStatus(ctx, order.ID, to, reason); err != nil {
		return mapRepoError(err, "update order status")
	}
	entry := &models.OrderTrackingEvent{
		OrderID:     order.ID,
		Status:      to,
		Description: description,
		ChangedBy:   actor,
		Timestamp:   at,
	}
	if err := repo.AppendTracking(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append tracking history")
	}
	order.Status = to
	order.CancelReason = reason
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID uuid.UUID, actor *outbox.ActorRef, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         actor,
		Data:          data,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(eventType))
	}
	return nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoError(err, "load order")
	}
	return order, nil
}

// loadAndPush reloads the committed order and pushes it to realtime
// subscribers. A failed push is logged; the change is already committed and
// recorded in the outbox.
func (s *service) loadAndPush(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	event := realtime.OrderEvent{
		Event:  realtime.EventOrderStatusUpdated,
		Public: NewStatusView(order),
		Full:   NewOrderView(order),
	}
	if err := s.broadcaster.PublishOrderEvent(ctx, orderID, event); err != nil {
		s.logg.Error(logCtx, "realtime push failed", err)
	}
	s.logg.Info(s.logg.WithField(logCtx, "order_status", int(order.Status)), "order status updated")
	return order, nil
}

func (s *service) reject(operation string, err error) error {
	s.opts.Metrics.IncRejected(operation, string(pkgerrors.CodeOf(err)))
	return err
}

func buildItems(inputs []ItemInput) ([]models.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_items must not be empty")
	}
	items := make([]models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		switch {
		case in.ProductID == uuid.Nil:
			return nil, itemError(i, "product_id is required")
		case strings.TrimSpace(in.ProductName) == "":
			return nil, itemError(i, "product_name is required")
		case in.Quantity < 1:
			return nil, itemError(i, "quantity must be at least 1")
		case in.Price.IsNegative() || in.PriceEnd.IsNegative():
			return nil, itemError(i, "price must not be negative")
		case in.Discount.IsNegative() || in.Discount.GreaterThan(maxDiscountPercent):
			return nil, itemError(i, "discount must be between 0 and 100")
		}
		items = append(items, models.OrderItem{
			Position:    i,
			ProductID:   in.ProductID,
			ProductName: strings.TrimSpace(in.ProductName),
			Thumbnail:   in.Thumbnail,
			Quantity:    in.Quantity,
			Price:       in.Price,
			Discount:    in.Discount,
			PriceEnd:    in.PriceEnd,
		})
	}
	return items, nil
}

// maxDiscountPercent matches the numeric(5,2) discount column.
var maxDiscountPercent = decimal.NewFromInt(100)

func itemError(index int, message string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "order_items[%d]: %s", index, message)
}

func shippingAddress(input CreateOrderInput, customer *models.Customer) (string, string, string) {
	street := strings.TrimSpace(input.Street)
	city := strings.TrimSpace(input.City)
	state := strings.TrimSpace(input.State)
	if customer != nil {
		if street == "" {
			street = customer.Street
		}
		if city == "" {
			city = customer.City
		}
		if state == "" {
			state = customer.State
		}
	}
	return street, city, state
}

func createdPayload(order *models.Order, customer *models.Customer) payloads.OrderCreatedEvent {
	lines := make([]payloads.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payloads.OrderLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceEnd:    item.PriceEnd,
			LineTotal:   item.LineTotal(),
		})
	}
	event := payloads.OrderCreatedEvent{
		OrderID:      order.ID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		PaymentType:  order.PaymentType,
		Street:       order.Street,
		City:         order.City,
		State:        order.State,
		Items:        lines,
		Total:        OrderTotal(order.Items),
		OrderDate:    order.OrderDate,
	}
	if customer.Email != nil {
		event.Email = *customer.Email
	}
	if customer.Phone != nil {
		event.Phone = *customer.Phone
	}
	return event
}

func containsProduct(items []models.OrderItem, productID uuid.UUID) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func actorRef(userID *uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	if userID == nil {
		return nil
	}
	return &outbox.ActorRef{ID: *userID, Role: role}
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func statusLabel(status enums.OrderStatus) string {
	return strings.ToLower(strings.ReplaceAll(status.Title(), " ", "_"))
}

func paymentLabel(payment enums.PaymentType) string {
	switch payment {
	case enums.PaymentTypeCOD:
		return "cod"
	case enums.PaymentTypeVNPay:
		return "vnpay"
	case enums.PaymentTypeMomo:
		return "momo"
	default:
		return "unknown"
	}
}
