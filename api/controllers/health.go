package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/teklifbul/mukayese-backend/api/responses"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mukayese-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, Redis. A nil Redis
// pinger means the service runs without it.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mukayese-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "disabled"}
		if err := db.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready").
				WithDetails(map[string]any{"dependency": "database"}))
			return
		}
		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready").
					WithDetails(map[string]any{"dependency": "redis"}))
				return
			}
			checks["redis"] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
