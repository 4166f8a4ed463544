package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-orders/api/controllers"
	"github.com/angelmondragon/storefront-orders/internal/orders"
	"github.com/angelmondragon/storefront-orders/internal/realtime"
	pkgAuth "github.com/angelmondragon/storefront-orders/pkg/auth"
	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
)

type stubOrders struct {
	orders.Service
	calls []string
}

func (s *stubOrders) record(name string) { s.calls = append(s.calls, name) }

func (s *stubOrders) List(context.Context, orders.ListQuery) (*orders.OrderList, error) {
	s.record("list")
	return &orders.OrderList{Orders: []orders.OrderView{}}, nil
}

func (s *stubOrders) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.record("get")
	return &models.Order{ID: id}, nil
}

func (s *stubOrders) GetStatus(_ context.Context, id uuid.UUID) (*orders.StatusView, error) {
	s.record("status")
	return &orders.StatusView{ID: id, OrderStatus: enums.OrderStatusConfirmed}, nil
}

func (s *stubOrders) ListByCustomer(context.Context, uuid.UUID) ([]models.Order, error) {
	s.record("mine")
	return nil, nil
}

func (s *stubOrders) Delete(context.Context, uuid.UUID) error {
	s.record("delete")
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", AllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, svc *stubOrders) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewOrderMetrics(reg).IncTransition(enums.OrderStatusConfirmed.String(), enums.OrderStatusPreparing.String())
	handler := NewRouter(cfg, logger.Nop(), Dependencies{
		Orders:  svc,
		Hub:     realtime.NewHub(cfg.Realtime, cfg.App.AllowedOrigins, logger.Nop()),
		Metrics: reg,
		Probes:  []controllers.Probe{{Name: "postgres", Check: func(context.Context) error { return nil }}},
	})
	return handler, cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.ActorRole) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token, userID
}

func do(handler http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	handler, _ := newTestRouter(t, &stubOrders{})
	assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsEndpointExposesOrderCounters(t *testing.T) {
	handler, _ := newTestRouter(t, &stubOrders{})
	rec := do(handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_order_status_transitions_total")
}

func TestListRequiresBackOfficeRole(t *testing.T) {
	svc := &stubOrders{}
	handler, cfg := newTestRouter(t, svc)

	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/api/v1/orders", "").Code)

	customer, _ := bearer(t, cfg, enums.ActorRoleCustomer)
	assert.Equal(t, http.StatusForbidden, do(handler, http.MethodGet, "/api/v1/orders", customer).Code)

	staff, _ := bearer(t, cfg, enums.ActorRoleStaff)
	rec := do(handler, http.MethodGet, "/api/v1/orders", staff)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"list"}, svc.calls)
}

func TestStatusIsPublic(t *testing.T) {
	svc := &stubOrders{}
	handler, _ := newTestRouter(t, svc)

	rec := do(handler, http.MethodGet, "/api/v1/orders/"+uuid.NewString()+"/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		StatusCode int `json:"statusCode"`
		Data       struct {
			OrderStatus int `json:"order_status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, 1, env.Data.OrderStatus)
}

func TestStatusRejectsInvalidToken(t *testing.T) {
	handler, _ := newTestRouter(t, &stubOrders{})
	rec := do(handler, http.MethodGet, "/api/v1/orders/"+uuid.NewString()+"/status", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerRoutesRejectStaff(t *testing.T) {
	svc := &stubOrders{}
	handler, cfg := newTestRouter(t, svc)

	staff, _ := bearer(t, cfg, enums.ActorRoleStaff)
	assert.Equal(t, http.StatusForbidden, do(handler, http.MethodGet, "/api/v1/orders/customer/mine", staff).Code)

	customer, _ := bearer(t, cfg, enums.ActorRoleCustomer)
	assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/api/v1/orders/customer/mine", customer).Code)
	assert.Equal(t, []string{"mine"}, svc.calls)
}

func TestDeleteRequiresBackOffice(t *testing.T) {
	svc := &stubOrders{}
	handler, cfg := newTestRouter(t, svc)
	path := "/api/v1/orders/" + uuid.NewString()

	customer, _ := bearer(t, cfg, enums.ActorRoleCustomer)
	assert.Equal(t, http.StatusForbidden, do(handler, http.MethodDelete, path, customer).Code)

	admin, _ := bearer(t, cfg, enums.ActorRoleAdmin)
	assert.Equal(t, http.StatusOK, do(handler, http.MethodDelete, path, admin).Code)
}

func TestAdminStreamRequiresBackOffice(t *testing.T) {
	handler, cfg := newTestRouter(t, &stubOrders{})

	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/ws/orders", "").Code)

	customer, _ := bearer(t, cfg, enums.ActorRoleCustomer)
	assert.Equal(t, http.StatusForbidden, do(handler, http.MethodGet, "/ws/orders", customer).Code)
}
