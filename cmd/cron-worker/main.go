package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-orders/internal/cron"
	"github.com/angelmondragon/storefront-orders/pkg/bootstrap"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
)

const serviceKind = "cron-worker"

func main() {
	bootstrap.Main(serviceKind, run)
}

func run(ctx context.Context, p *bootstrap.Process) error {
	cfg := p.Config

	dbClient, err := p.Database(ctx)
	if err != nil {
		return err
	}
	redisClient, err := p.Redis(ctx)
	if err != nil {
		return err
	}

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:      p.Logger,
		DB:          dbClient,
		Outbox:      outbox.NewRepository(dbClient.DB()),
		DeadLetters: outbox.NewDLQRepository(dbClient.DB()),
		Retention:   cfg.Outbox.RetentionWindow,
	})
	if err != nil {
		return fmt.Errorf("outbox retention job: %w", err)
	}
	jobs, err := cron.NewRegistry(retention)
	if err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}

	// One lock per environment so staging and prod workers sharing a Redis
	// never block each other.
	lock, err := cron.NewRedisLock(redisClient, serviceKind+":"+lockScope(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   p.Logger,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(p.Metrics),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	p.ServeMetrics(ctx)
	return service.Run(ctx)
}

func lockScope(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
