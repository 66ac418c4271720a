package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/brewhouse-backend/api/responses"
	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Brewhouse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency concurrently. A nil pinger is
// reported as disabled and does not fail the probe.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Brewhouse-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}

		errs := make([]error, len(names))
		var g errgroup.Group
		for i, name := range names {
			p := deps[name]
			if p == nil {
				continue
			}
			g.Go(func() error {
				errs[i] = p.Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		checks := make(map[string]string, len(names))
		ready := true
		for i, name := range names {
			switch {
			case deps[name] == nil:
				checks[name] = "disabled"
			case errs[i] != nil:
				ready = false
				checks[name] = "down"
				if logg != nil {
					logg.WarnErr(logg.WithField(r.Context(), "dependency", name), "readiness check failed", errs[i])
				}
			default:
				checks[name] = "up"
			}
		}

		if !ready {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
