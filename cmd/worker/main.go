package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-orders/internal/notifications"
	"github.com/angelmondragon/storefront-orders/pkg/bootstrap"
	"github.com/angelmondragon/storefront-orders/pkg/mailer"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/idempotency"
	"github.com/angelmondragon/storefront-orders/pkg/pubsub"
)

const serviceKind = "worker"

func main() {
	bootstrap.Main(serviceKind, run)
}

func run(ctx context.Context, p *bootstrap.Process) error {
	cfg := p.Config

	redisClient, err := p.Redis(ctx)
	if err != nil {
		return err
	}
	pubsubClient, err := p.PubSub(ctx, pubsub.RoleConsumer)
	if err != nil {
		return err
	}
	mailClient, err := mailer.New(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("configure smtp: %w", err)
	}
	processed, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		return fmt.Errorf("idempotency manager: %w", err)
	}

	notificationConsumer, err := notifications.NewConsumer(
		mailClient,
		pubsubClient.NotificationSubscription(),
		processed,
		metrics.NewNotificationMetrics(p.Metrics),
		p.Logger,
	)
	if err != nil {
		return fmt.Errorf("notification consumer: %w", err)
	}

	service, err := NewService(ServiceParams{
		Logger: p.Logger,
		Dependencies: []Dependency{
			{Name: "redis", Ping: redisClient},
			{Name: "pubsub", Ping: pubsubClient},
		},
		Consumers: []Consumer{
			{Name: "notifications", Run: notificationConsumer},
		},
	})
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	p.ServeMetrics(ctx)
	return service.Run(ctx)
}
