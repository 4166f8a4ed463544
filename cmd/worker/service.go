package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

const heartbeatInterval = time.Minute

type pinger interface {
	Ping(context.Context) error
}

type consumer interface {
	Run(context.Context) error
}

// Dependency is a backing service the worker must reach before consuming.
type Dependency struct {
	Name string
	Ping pinger
}

// Consumer is a named long running subscription loop.
type Consumer struct {
	Name string
	Run  consumer
}

type ServiceParams struct {
	Logger       *logger.Logger
	Dependencies []Dependency
	Consumers    []Consumer
	Heartbeat    time.Duration
}

// Service supervises the asynchronous order consumers. The first consumer to
// stop takes the others down with it.
type Service struct {
	logg      *logger.Logger
	deps      []Dependency
	consumers []Consumer
	heartbeat time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case len(params.Consumers) == 0:
		return nil, errors.New("at least one consumer is required")
	}
	for _, dep := range params.Dependencies {
		if dep.Name == "" || dep.Ping == nil {
			return nil, errors.New("dependency requires a name and pinger")
		}
	}
	for _, c := range params.Consumers {
		if c.Name == "" || c.Run == nil {
			return nil, errors.New("consumer requires a name and runner")
		}
	}
	heartbeat := params.Heartbeat
	if heartbeat <= 0 {
		heartbeat = heartbeatInterval
	}
	return &Service{
		logg:      params.Logger,
		deps:      params.Dependencies,
		consumers: params.Consumers,
		heartbeat: heartbeat,
	}, nil
}

func (s *Service) ready(ctx context.Context) error {
	for _, dep := range s.deps {
		if err := dep.Ping.Ping(ctx); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "dependency", dep.Name), "dependency ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.Name, err)
		}
	}
	return nil
}

type exit struct {
	name string
	err  error
}

// Run blocks until ctx is cancelled or a consumer exits.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan exit, len(s.consumers))
	for _, c := range s.consumers {
		go func() {
			exits <- exit{name: c.Name, err: c.Run.Run(runCtx)}
		}()
	}
	s.logg.Info(ctx, fmt.Sprintf("worker started %d consumer(s)", len(s.consumers)))

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	var first error
	remaining := len(s.consumers)
	for remaining > 0 {
		select {
		case <-ticker.C:
			s.logg.Debug(ctx, "worker heartbeat")
		case done := <-exits:
			remaining--
			err := s.consumerStopped(ctx, done)
			if first == nil {
				first = err
			}
			cancel()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return first
}

func (s *Service) consumerStopped(ctx context.Context, done exit) error {
	fieldsCtx := s.logg.WithField(ctx, "consumer", done.name)
	switch {
	case done.err == nil && ctx.Err() == nil:
		err := fmt.Errorf("consumer %s exited", done.name)
		s.logg.Error(fieldsCtx, "consumer stopped unexpectedly", err)
		return err
	case done.err != nil && !errors.Is(done.err, context.Canceled):
		s.logg.Error(fieldsCtx, "consumer stopped unexpectedly", done.err)
		return fmt.Errorf("consumer %s: %w", done.name, done.err)
	default:
		s.logg.Info(fieldsCtx, "consumer stopped")
		return nil
	}
}
