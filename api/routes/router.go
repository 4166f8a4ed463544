package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-orders/api/controllers"
	ordercontrollers "github.com/angelmondragon/storefront-orders/api/controllers/orders"
	"github.com/angelmondragon/storefront-orders/api/middleware"
	"github.com/angelmondragon/storefront-orders/internal/orders"
	"github.com/angelmondragon/storefront-orders/internal/realtime"
	"github.com/angelmondragon/storefront-orders/pkg/auth/session"
	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

// Dependencies are the collaborators the HTTP surface needs.
type Dependencies struct {
	Sessions    session.AccessSessionChecker
	Idempotency middleware.IdempotencyStore
	Orders      orders.Service
	Hub         *realtime.Hub
	Metrics     prometheus.Gatherer
	Probes      []controllers.Probe
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins, cfg.App.IsDev()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Probes...))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	auth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	backOffice := middleware.RequireRole(logg, enums.ActorRoleStaff, enums.ActorRoleAdmin)
	customer := middleware.RequireRole(logg, enums.ActorRoleCustomer)
	// Idempotency matches on the full route pattern, which chi only knows at
	// the endpoint, so it is attached per route.
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.With(idempotent).Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/{orderId}/status", ordercontrollers.Status(deps.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(customer)
				r.Get("/customer/mine", ordercontrollers.Mine(deps.Orders, logg))
				r.With(idempotent).Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
				r.With(idempotent).Post("/{orderId}/rating", ordercontrollers.Rate(deps.Orders, logg))
				r.With(idempotent).Post("/{orderId}/confirm-received", ordercontrollers.ConfirmReceived(deps.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(backOffice)
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Put("/{orderId}", ordercontrollers.Update(deps.Orders, logg))
				r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
				r.Delete("/{orderId}", ordercontrollers.Delete(deps.Orders, logg))
			})
		})
	})

	if deps.Hub != nil {
		r.Route("/ws/orders", func(r chi.Router) {
			r.With(auth, backOffice).Get("/", controllers.AdminStream(deps.Hub, logg))
			r.Get("/{orderId}", controllers.OrderStream(deps.Hub, logg))
		})
	}

	return r
}
