package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/types"
)

// CustomerInput is the guest contact block of a checkout.
type CustomerInput struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

// ItemInput is one product snapshot submitted at checkout.
type ItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Thumbnail   *string         `json:"thumbnail,omitempty"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	PriceEnd    decimal.Decimal `json:"price_end"`
}

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	Customer    *CustomerInput `json:"customer,omitempty"`
	PaymentType int            `json:"payment_type"`
	Street      string         `json:"street" validate:"omitempty,max=255"`
	City        string         `json:"city" validate:"omitempty,max=120"`
	State       string         `json:"state" validate:"omitempty,max=120"`
	RequireDate *time.Time     `json:"require_date,omitempty"`
	Items       []ItemInput    `json:"order_items" validate:"dive"`
}

// CreateOrderInput is what the service needs to place an order. CustomerID is
// set when the caller is an authenticated customer.
type CreateOrderInput struct {
	CustomerID  *uuid.UUID
	Customer    *CustomerInput
	PaymentType enums.PaymentType
	Street      string
	City        string
	State       string
	RequireDate *time.Time
	Items       []ItemInput
}

// Input converts the request body into service input.
func (r CreateOrderRequest) Input(customerID *uuid.UUID) CreateOrderInput {
	return CreateOrderInput{
		CustomerID:  customerID,
		Customer:    r.Customer,
		PaymentType: enums.PaymentType(r.PaymentType),
		Street:      r.Street,
		City:        r.City,
		State:       r.State,
		RequireDate: r.RequireDate,
		Items:       r.Items,
	}
}

// UpdateStatusRequest is the PATCH /orders/{orderId}/status body.
type UpdateStatusRequest struct {
	OrderStatus int    `json:"order_status" validate:"required"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateStatusInput carries a staff status change.
type UpdateStatusInput struct {
	OrderID     uuid.UUID
	Status      enums.OrderStatus
	Description string
	ActorID     *uuid.UUID
}

// CancelRequest is the POST /orders/{orderId}/cancel body. The reason is
// checked by the service after ownership.
type CancelRequest struct {
	CancelReason string `json:"cancel_reason" validate:"max=500"`
}

// RatingRequest is the POST /orders/{orderId}/rating body.
type RatingRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Stars     int       `json:"stars" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
	Images    []string  `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Videos    []string  `json:"videos,omitempty" validate:"omitempty,max=5,dive,url"`
}

// RatingInput is a customer review of one product of one order.
type RatingInput struct {
	CustomerID uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Stars      int
	Comment    *string
	Images     []string
	Videos     []string
}

// UpdateOrderRequest is the PUT /orders/{orderId} body. Absent fields are left
// unchanged; explicit nulls clear nullable columns.
type UpdateOrderRequest struct {
	Street       *string                   `json:"street,omitempty" validate:"omitempty,min=1,max=255"`
	City         *string                   `json:"city,omitempty" validate:"omitempty,min=1,max=120"`
	State        *string                   `json:"state,omitempty" validate:"omitempty,min=1,max=120"`
	PaymentType  *int                      `json:"payment_type,omitempty"`
	StaffID      types.Nullable[uuid.UUID] `json:"staff_id"`
	RequireDate  types.Nullable[time.Time] `json:"require_date"`
	ShippingDate types.Nullable[time.Time] `json:"shipping_date"`
}

// ListQuery holds the findAllOrder filters.
type ListQuery struct {
	Phone       string
	Name        string
	Status      *enums.OrderStatus
	PaymentType *enums.PaymentType
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// CustomerView is the customer block embedded in an order.
type CustomerView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email"`
	Phone *string   `json:"phone"`
}

// StaffView is the staff block embedded in an order.
type StaffView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ItemView renders one order item.
type ItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Thumbnail   *string         `json:"thumbnail"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	PriceEnd    decimal.Decimal `json:"price_end"`
}

// TrackingView renders one tracking history entry.
type TrackingView struct {
	Status      enums.OrderStatus `json:"status"`
	StatusTitle string            `json:"statusTitle"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
}

// RatingView renders one product rating.
type RatingView struct {
	ProductID  uuid.UUID `json:"product_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Stars      int       `json:"stars"`
	Comment    *string   `json:"comment"`
	Images     []string  `json:"images"`
	Videos     []string  `json:"videos"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderView is the JSON shape of an order returned by the API and pushed to
// realtime subscribers.
type OrderView struct {
	ID               uuid.UUID         `json:"id"`
	Customer         *CustomerView     `json:"customer"`
	CustomerID       uuid.UUID         `json:"customer_id"`
	Staff            *StaffView        `json:"staff"`
	OrderStatus      enums.OrderStatus `json:"order_status"`
	OrderStatusTitle string            `json:"orderStatusTitle"`
	PaymentType      enums.PaymentType `json:"payment_type"`
	PaymentTypeTitle string            `json:"paymentTypeTitle"`
	CancelReason     *string           `json:"cancelReason"`
	Street           string            `json:"street"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	OrderDate        time.Time         `json:"order_date"`
	RequireDate      *time.Time        `json:"require_date"`
	ShippingDate     *time.Time        `json:"shipping_date"`
	Items            []ItemView        `json:"order_items"`
	TrackingHistory  []TrackingView    `json:"trackingHistory"`
	Ratings          []RatingView      `json:"ratings"`
	Total            decimal.Decimal   `json:"total"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// StatusView is the getOrderStatusById response.
type StatusView struct {
	ID               uuid.UUID         `json:"id"`
	OrderStatus      enums.OrderStatus `json:"order_status"`
	OrderStatusTitle string            `json:"orderStatusTitle"`
}

// NewStatusView renders the contact-free status of an order.
func NewStatusView(order *models.Order) StatusView {
	return StatusView{
		ID:               order.ID,
		OrderStatus:      order.Status,
		OrderStatusTitle: order.Status.Title(),
	}
}

// OrderList is a page of orders plus its pagination block.
type OrderList struct {
	Orders []OrderView `json:"orders"`
	types.Page
}

// NewOrderView renders an order with its loaded associations.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		OrderStatus:      order.Status,
		OrderStatusTitle: order.Status.Title(),
		PaymentType:      order.PaymentType,
		PaymentTypeTitle: order.PaymentType.Title(),
		CancelReason:     order.CancelReason,
		Street:           order.Street,
		City:             order.City,
		State:            order.State,
		OrderDate:        order.OrderDate,
		RequireDate:      order.RequireDate,
		ShippingDate:     order.ShippingDate,
		Items:            make([]ItemView, 0, len(order.Items)),
		TrackingHistory:  make([]TrackingView, 0, len(order.TrackingHistory)),
		Ratings:          make([]RatingView, 0, len(order.Ratings)),
		Total:            OrderTotal(order.Items),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	if order.Customer != nil {
		view.Customer = &CustomerView{
			ID:    order.Customer.ID,
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		}
	}
	if order.Staff != nil {
		view.Staff = &StaffView{ID: order.Staff.ID, Name: order.Staff.Name, Email: order.Staff.Email}
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Thumbnail:   item.Thumbnail,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Discount:    item.Discount,
			PriceEnd:    item.PriceEnd,
		})
	}
	for _, event := range order.TrackingHistory {
		view.TrackingHistory = append(view.TrackingHistory, TrackingView{
			Status:      event.Status,
			StatusTitle: event.Status.Title(),
			Description: event.Description,
			Timestamp:   event.Timestamp,
		})
	}
	for _, rating := range order.Ratings {
		view.Ratings = append(view.Ratings, RatingView{
			ProductID:  rating.ProductID,
			CustomerID: rating.CustomerID,
			Stars:      rating.Stars,
			Comment:    rating.Comment,
			Images:     []string(rating.Images),
			Videos:     []string(rating.Videos),
			CreatedAt:  rating.CreatedAt,
			UpdatedAt:  rating.UpdatedAt,
		})
	}
	return view
}

// NewOrderViews renders a slice of orders.
func NewOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views
}

// OrderTotal sums price_end × quantity over the items.
func OrderTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
