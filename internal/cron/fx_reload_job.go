package cron

import (
	"context"
	"fmt"

	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

const FXReloadJobName = "fx_rates_reload"

type fxTableLoader interface {
	Load(ctx context.Context) (*fx.Table, bool, error)
}

type rateUpdater interface {
	UpdateRates(table *fx.Table) error
}

type FXReloadJobParams struct {
	Logger        *logger.Logger
	Store         fxTableLoader
	Normalizer    rateUpdater
	DeriveInverse bool
}

// NewFXReloadJob pulls the shared rate table into this instance's normalizer.
// It runs on every replica, so it must be scheduled behind a local lock.
func NewFXReloadJob(params FXReloadJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("rate store required")
	}
	if params.Normalizer == nil {
		return nil, fmt.Errorf("normalizer required")
	}
	return &fxReloadJob{
		logg:          params.Logger,
		store:         params.Store,
		normalizer:    params.Normalizer,
		deriveInverse: params.DeriveInverse,
	}, nil
}

type fxReloadJob struct {
	logg          *logger.Logger
	store         fxTableLoader
	normalizer    rateUpdater
	deriveInverse bool
}

func (j *fxReloadJob) Name() string { return FXReloadJobName }

// Run swaps in the stored table. A missing hash keeps the current table.
func (j *fxReloadJob) Run(ctx context.Context) error {
	table, found, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("fx reload: %w", err)
	}
	if !found {
		j.logg.Debug(ctx, "no shared fx table; keeping current rates")
		return nil
	}
	if j.deriveInverse {
		table = table.WithDerived()
	}
	if err := j.normalizer.UpdateRates(table); err != nil {
		return fmt.Errorf("fx reload: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"pairs": table.Len()})
	j.logg.Debug(logCtx, "fx rates reloaded")
	return nil
}
