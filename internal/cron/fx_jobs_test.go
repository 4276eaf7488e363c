package cron

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

type stubRateStore struct {
	table   *fx.Table
	found   bool
	loadErr error
	saved   []*fx.Table
}

func (s *stubRateStore) Load(context.Context) (*fx.Table, bool, error) {
	return s.table, s.found, s.loadErr
}

func (s *stubRateStore) Save(_ context.Context, table *fx.Table) error {
	s.saved = append(s.saved, table)
	s.table, s.found = table, true
	return nil
}

func mustTable(t *testing.T, raw map[string]string) *fx.Table {
	t.Helper()
	table, err := fx.ParseTable(raw)
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	return table
}

func newNormalizer(t *testing.T) *fx.Normalizer {
	t.Helper()
	n, err := fx.NewNormalizer(enums.CurrencyTRY, mustTable(t, map[string]string{"USD_TRY": "30"}))
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}
	return n
}

func TestFXReloadJobSwapsInStoredTable(t *testing.T) {
	normalizer := newNormalizer(t)
	store := &stubRateStore{table: mustTable(t, map[string]string{"USD_TRY": "32.5"}), found: true}
	job, err := NewFXReloadJob(FXReloadJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "cron-test"}),
		Store:         store,
		Normalizer:    normalizer,
		DeriveInverse: true,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != FXReloadJobName {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	rate, err := normalizer.Rate(enums.CurrencyUSD, enums.CurrencyTRY)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rate.String() != "32.5" {
		t.Fatalf("expected reloaded rate 32.5, got %s", rate)
	}
	if _, err := normalizer.Rate(enums.CurrencyTRY, enums.CurrencyUSD); err != nil {
		t.Fatalf("expected derived inverse after reload: %v", err)
	}
}

func TestFXReloadJobKeepsRatesWhenStoreEmpty(t *testing.T) {
	normalizer := newNormalizer(t)
	before := normalizer.Table()
	job, err := NewFXReloadJob(FXReloadJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Store:      &stubRateStore{},
		Normalizer: normalizer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if normalizer.Table() != before {
		t.Fatalf("table replaced although the store was empty")
	}
}

func TestFXReloadJobSurfacesStoreErrors(t *testing.T) {
	job, err := NewFXReloadJob(FXReloadJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Store:      &stubRateStore{loadErr: errors.New("redis down")},
		Normalizer: newNormalizer(t),
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestFXSeedJobWritesDefaultOnce(t *testing.T) {
	var logs bytes.Buffer
	store := &stubRateStore{}
	defaults := mustTable(t, map[string]string{"USD_TRY": "30", "EUR_TRY": "33"})
	job, err := NewFXSeedJob(FXSeedJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test", Output: &logs}),
		Store:   store,
		Default: defaults,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(store.saved))
	}
	if store.saved[0] != defaults {
		t.Fatalf("seeded table is not the configured default")
	}
	if !strings.Contains(logs.String(), "seeded shared fx table") {
		t.Fatalf("expected seed log, got %s", logs.String())
	}
}

func TestFXSeedJobRequiresDefaultTable(t *testing.T) {
	_, err := NewFXSeedJob(FXSeedJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Store:  &stubRateStore{},
	})
	if err == nil {
		t.Fatalf("expected error without default table")
	}
}
