package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/api/middleware"
	"github.com/angelmondragon/storefront-orders/api/responses"
	"github.com/angelmondragon/storefront-orders/api/validators"
	internalorders "github.com/angelmondragon/storefront-orders/internal/orders"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/pagination"
)

const (
	maxFilterLen = 120
	maxSortLen   = 32
)

// Create places an order for a guest or the authenticated customer.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req internalorders.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customerID *uuid.UUID
		if actor, ok := middleware.ActorFromContext(r.Context()); ok && actor.Role == enums.ActorRoleCustomer {
			customerID = &actor.UserID
		}

		order, err := svc.Create(r.Context(), req.Input(customerID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "order created", internalorders.NewOrderView(order))
	}
}

// List is the back-office order search.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns one order to staff or to the customer who owns it.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !isBackOffice(actor.Role) && order.CustomerID != actor.UserID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "order does not belong to customer"))
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(order))
	}
}

// Status returns only the current status of an order.
func Status(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetStatus(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Mine lists the caller's orders, newest first.
func Mine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByCustomer(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderViews(list))
	}
}

// UpdateStatus is the staff status transition endpoint.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req internalorders.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.UpdateStatusInput{
			OrderID:     orderID,
			Status:      enums.OrderStatus(req.OrderStatus),
			Description: req.Description,
		}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			input.ActorID = &actor.UserID
		}

		order, err := svc.UpdateStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order status updated", internalorders.NewOrderView(order))
	}
}

// Cancel lets the owning customer cancel an order that has not shipped.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req internalorders.CancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, actor.UserID, req.CancelReason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order cancelled", internalorders.NewOrderView(order))
	}
}

// ConfirmReceived marks a shipped order as delivered on the customer's word.
func ConfirmReceived(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ConfirmReceived(r.Context(), orderID, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order received", internalorders.NewOrderView(order))
	}
}

// Rate stores or replaces the caller's rating of one product of the order.
func Rate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req internalorders.RatingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddRating(r.Context(), internalorders.RatingInput{
			CustomerID: actor.UserID,
			OrderID:    orderID,
			ProductID:  req.ProductID,
			Stars:      req.Stars,
			Comment:    req.Comment,
			Images:     req.Images,
			Videos:     req.Videos,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "rating saved", internalorders.NewOrderView(order))
	}
}

// Update applies staff edits to the shipping and scheduling fields.
func Update(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req internalorders.UpdateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Update(r.Context(), orderID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order updated", internalorders.NewOrderView(order))
	}
}

// Delete soft-deletes an order.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order deleted", map[string]string{"id": orderID.String()})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func customerActor(r *http.Request) (middleware.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.Role != enums.ActorRoleCustomer {
		return middleware.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer credentials required")
	}
	return actor, nil
}

func isBackOffice(role enums.ActorRole) bool {
	return role == enums.ActorRoleStaff || role == enums.ActorRoleAdmin
}

func parseListQuery(r *http.Request) (internalorders.ListQuery, error) {
	q := validators.Query(r)
	page, err := q.Int("page", 1, 1, 1_000_000)
	if err != nil {
		return internalorders.ListQuery{}, err
	}
	limit, err := q.Int("limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return internalorders.ListQuery{}, err
	}
	status, err := q.OptionalInt("order_status", int(enums.OrderStatusConfirmed), int(enums.OrderStatusCancelled))
	if err != nil {
		return internalorders.ListQuery{}, err
	}
	paymentType, err := q.OptionalInt("payment_type", int(enums.PaymentTypeCOD), int(enums.PaymentTypeMomo))
	if err != nil {
		return internalorders.ListQuery{}, err
	}

	query := internalorders.ListQuery{
		Phone:     q.String("phone", maxFilterLen),
		Name:      q.String("name", maxFilterLen),
		SortBy:    q.First(maxSortLen, "sort_by", "sortBy"),
		SortOrder: q.First(maxSortLen, "sort_order", "sortOrder"),
		Page:      page,
		Limit:     limit,
	}
	if status != nil {
		s := enums.OrderStatus(*status)
		query.Status = &s
	}
	if paymentType != nil {
		p := enums.PaymentType(*paymentType)
		query.PaymentType = &p
	}
	return query, nil
}
