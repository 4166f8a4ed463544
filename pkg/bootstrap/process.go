// Package bootstrap holds the startup and shutdown sequence shared by every
// binary: environment, config, logger, metrics registry, signal handling and
// ordered cleanup of the clients a binary opens.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db"
	"github.com/angelmondragon/storefront-orders/pkg/instance"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/migrate"
	"github.com/angelmondragon/storefront-orders/pkg/pubsub"
	"github.com/angelmondragon/storefront-orders/pkg/redis"
)

const metricsNamespace = "storefront"

// Process is one running binary.
type Process struct {
	Kind    string
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *prometheus.Registry

	mu      sync.Mutex
	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// Start loads .env when present, then the config, and builds the logger and
// metrics registry for kind.
func Start(kind string) (*Process, error) {
	boot := logger.New(logger.Options{ServiceName: kind})
	if err := godotenv.Load(); err != nil {
		boot.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = kind

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Process{
		Kind:   kind,
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: kind,
			Environment: cfg.App.Env,
			Instance:    instance.ID(),
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
		}),
		Metrics: reg,
	}, nil
}

// Main runs fn inside a process and exits non-zero when it fails. Cleanup
// registered with Defer runs before exit either way.
func Main(kind string, fn func(ctx context.Context, p *Process) error) {
	p, err := Start(kind)
	if err != nil {
		logger.New(logger.Options{ServiceName: kind}).Error(context.Background(), "failed to start", err)
		os.Exit(1)
	}
	if err := p.run(fn); err != nil {
		os.Exit(1)
	}
}

func (p *Process) run(fn func(ctx context.Context, p *Process) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = p.Logger.WithField(ctx, "serviceKind", p.Kind)
	p.Logger.Info(ctx, "starting "+p.Kind)

	err := fn(ctx, p)
	stop()
	p.Close(ctx)

	if err != nil && !errors.Is(err, context.Canceled) {
		p.Logger.Error(ctx, p.Kind+" stopped unexpectedly", err)
		return err
	}
	p.Logger.Info(ctx, p.Kind+" shut down gracefully")
	return nil
}

// Defer registers cleanup. Close runs it in reverse registration order.
func (p *Process) Defer(name string, fn func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closers = append(p.closers, closer{name: name, fn: fn})
}

// Close runs registered cleanup once, logging failures.
func (p *Process) Close(ctx context.Context) {
	p.mu.Lock()
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].fn(); err != nil {
			p.Logger.Error(p.Logger.WithField(ctx, "resource", closers[i].name), "error closing resource", err)
		}
	}
}

// Database connects to the database, applies dev migrations when enabled and
// exports pool stats.
func (p *Process) Database(ctx context.Context) (*db.Client, error) {
	client, err := db.New(ctx, p.Config.DB, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	p.Defer("database", client.Close)

	if err := migrate.MaybeRunDev(ctx, p.Config, p.Logger, client); err != nil {
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	if sqlDB, err := client.SQLDB(); err == nil {
		p.Metrics.MustRegister(collectors.NewDBStatsCollector(sqlDB, metricsNamespace))
	}
	return client, nil
}

// Redis connects to Redis and exports pool stats.
func (p *Process) Redis(ctx context.Context) (*redis.Client, error) {
	client, err := redis.New(ctx, p.Config.Redis, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap redis: %w", err)
	}
	p.Defer("redis", client.Close)
	if pool := redis.NewPoolCollector(metricsNamespace, client); pool != nil {
		p.Metrics.MustRegister(pool)
	}
	return client, nil
}

// PubSub connects to Pub/Sub and checks the resources role needs.
func (p *Process) PubSub(ctx context.Context, role pubsub.Role) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, p.Config.GCP, p.Config.PubSub, role, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap pubsub: %w", err)
	}
	p.Defer("pubsub", client.Close)
	return client, nil
}

// ServeMetrics exposes the registry on the configured metrics address until
// ctx is done. Binaries with their own HTTP server mount it there instead.
func (p *Process) ServeMetrics(ctx context.Context) {
	go func() {
		if err := metrics.Serve(ctx, p.Config.Metrics.Addr, p.Metrics); err != nil {
			p.Logger.Error(ctx, "metrics endpoint stopped", err)
		}
	}()
}
