package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-orders/api/responses"
	"github.com/angelmondragon/storefront-orders/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

const (
	envHeader    = "X-Storefront-Env"
	readyTimeout = 2 * time.Second
)

// Probe checks one dependency for the readiness endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady runs every probe and answers 503 when any of them fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		var failed error
		for _, probe := range probes {
			if probe.Check == nil {
				continue
			}
			if err := probe.Check(ctx); err != nil {
				checks[probe.Name] = err.Error()
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.Name+" not ready").WithDetails(checks)
				}
				continue
			}
			checks[probe.Name] = "ok"
		}
		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
