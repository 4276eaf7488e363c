package cron

import (
	"context"
	"fmt"

	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

const FXSeedJobName = "fx_rates_seed"

type fxTableStore interface {
	fxTableLoader
	Save(ctx context.Context, table *fx.Table) error
}

type FXSeedJobParams struct {
	Logger  *logger.Logger
	Store   fxTableStore
	Default *fx.Table
}

// NewFXSeedJob writes the configured default table when no shared table
// exists yet. Only one replica should run it per cycle.
func NewFXSeedJob(params FXSeedJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("rate store required")
	}
	if params.Default.Len() == 0 {
		return nil, fmt.Errorf("default rate table required")
	}
	return &fxSeedJob{logg: params.Logger, store: params.Store, table: params.Default}, nil
}

type fxSeedJob struct {
	logg  *logger.Logger
	store fxTableStore
	table *fx.Table
}

func (j *fxSeedJob) Name() string { return FXSeedJobName }

func (j *fxSeedJob) Run(ctx context.Context) error {
	_, found, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("fx seed: %w", err)
	}
	if found {
		return nil
	}
	if err := j.store.Save(ctx, j.table); err != nil {
		return fmt.Errorf("fx seed: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"pairs": j.table.Len()})
	j.logg.Info(logCtx, "seeded shared fx table from config")
	return nil
}
