package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/teklifbul/mukayese-backend/api/responses"
	"github.com/teklifbul/mukayese-backend/api/validators"
	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
	"github.com/teklifbul/mukayese-backend/pkg/types"
)

// ActiveRates is the normalizer surface the rate routes need.
type ActiveRates interface {
	ReportingCurrency() enums.Currency
	Table() *fx.Table
	UpdateRates(table *fx.Table) error
}

type RateSaver interface {
	Save(ctx context.Context, table *fx.Table) error
}

func ratesView(reporting enums.Currency, table *fx.Table) types.RatesResponse {
	out := types.RatesResponse{
		ReportingCurrency: reporting.String(),
		Rates:             []types.RateView{},
	}
	if at := table.LoadedAt(); !at.IsZero() {
		out.LoadedAt = at.UTC().Format(time.RFC3339)
	}
	for _, entry := range table.Entries() {
		out.Rates = append(out.Rates, types.RateView{
			Pair: entry.Key,
			From: entry.Pair.From.String(),
			To:   entry.Pair.To.String(),
			Rate: entry.Rate.String(),
		})
	}
	return out
}

// ListRates shows the table this instance converts with.
func ListRates(rates ActiveRates) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, ratesView(rates.ReportingCurrency(), rates.Table()))
	}
}

// ReplaceRates validates a new table, publishes it to the shared store when
// one is wired and swaps it in locally. Other replicas pick it up on their
// next reload.
func ReplaceRates(rates ActiveRates, store RateSaver, deriveInverse bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body validators.RatesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		table, err := fx.ParseTable(body.Rates)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate table").
				WithDetails(map[string]any{"error": err.Error()}))
			return
		}
		if store != nil {
			if err := store.Save(ctx, table); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store rate table"))
				return
			}
		}
		active := table
		if deriveInverse {
			active = table.WithDerived()
		}
		if err := rates.UpdateRates(active); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "pairs", table.Len()), "fx rates replaced")
		}
		responses.WriteSuccess(w, ratesView(rates.ReportingCurrency(), rates.Table()))
	}
}
