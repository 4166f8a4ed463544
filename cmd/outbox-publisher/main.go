package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-orders/pkg/bootstrap"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/registry"
	"github.com/angelmondragon/storefront-orders/pkg/pubsub"
)

const serviceKind = "outbox-publisher"

func main() {
	bootstrap.Main(serviceKind, run)
}

func run(ctx context.Context, p *bootstrap.Process) error {
	dbClient, err := p.Database(ctx)
	if err != nil {
		return err
	}
	pubsubClient, err := p.PubSub(ctx, pubsub.RolePublisher)
	if err != nil {
		return err
	}
	router, err := registry.NewRouter(p.Config.PubSub)
	if err != nil {
		return fmt.Errorf("event router: %w", err)
	}

	service, err := NewService(ServiceParams{
		Config:        p.Config,
		Logger:        p.Logger,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		Router:        router,
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Metrics:       metrics.NewOutboxMetrics(p.Metrics),
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	p.ServeMetrics(ctx)
	p.Logger.Info(p.Logger.WithField(ctx, "topics", router.Topics()), "relaying outbox events")
	return service.Run(ctx)
}
