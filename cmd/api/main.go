package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-orders/api/controllers"
	"github.com/angelmondragon/storefront-orders/api/routes"
	"github.com/angelmondragon/storefront-orders/internal/customers"
	"github.com/angelmondragon/storefront-orders/internal/orders"
	"github.com/angelmondragon/storefront-orders/internal/realtime"
	"github.com/angelmondragon/storefront-orders/pkg/auth/session"
	"github.com/angelmondragon/storefront-orders/pkg/bootstrap"
	"github.com/angelmondragon/storefront-orders/pkg/env"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
)

const (
	serviceKind     = "api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	bootstrap.Main(serviceKind, run)
}

func run(ctx context.Context, p *bootstrap.Process) error {
	cfg, logg := p.Config, p.Logger

	dbClient, err := p.Database(ctx)
	if err != nil {
		return err
	}
	redisClient, err := p.Redis(ctx)
	if err != nil {
		return err
	}

	broadcaster, err := realtime.NewBroadcaster(redisClient, cfg.Realtime, logg)
	if err != nil {
		return fmt.Errorf("realtime broadcaster: %w", err)
	}
	if err := broadcaster.Start(ctx); err != nil {
		return fmt.Errorf("start realtime broadcaster: %w", err)
	}
	p.Defer("realtime broadcaster", func() error {
		broadcaster.Stop()
		return nil
	})

	hub := realtime.NewHub(cfg.Realtime, cfg.App.AllowedOrigins, logg)
	go func() {
		if err := hub.Run(ctx, redisClient); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "realtime hub stopped", err)
		}
	}()

	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("customer service: %w", err)
	}
	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		customerService,
		broadcaster,
		orders.Options{
			StrictTransitions: cfg.Orders.StrictTransitions,
			DefaultPageSize:   cfg.Orders.DefaultPageSize,
			Metrics:           metrics.NewOrderMetrics(p.Metrics),
			Logger:            logg,
		},
	)
	if err != nil {
		return fmt.Errorf("order service: %w", err)
	}
	sessions, err := session.NewChecker(redisClient)
	if err != nil {
		return fmt.Errorf("session checker: %w", err)
	}

	server := &http.Server{
		Addr: ":" + env.Get("PORT", cfg.App.Port),
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Sessions:    sessions,
			Idempotency: redisClient,
			Orders:      orderService,
			Hub:         hub,
			Metrics:     p.Metrics,
			Probes: []controllers.Probe{
				{Name: "postgres", Check: dbClient.Ping},
				{Name: "redis", Check: redisClient.Ping},
				{Name: "realtime", Check: func(context.Context) error { return broadcaster.Ready() }},
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(logg.WithField(ctx, "addr", server.Addr), p, server)
}

// serve blocks until the server fails or ctx is done, then drains in-flight
// requests for up to shutdownTimeout.
func serve(ctx context.Context, p *bootstrap.Process, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	p.Logger.Info(ctx, "api server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		p.Logger.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	}
}
