package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teklifbul/mukayese-backend/api/responses"
	"github.com/teklifbul/mukayese-backend/api/validators"
	"github.com/teklifbul/mukayese-backend/internal/reports"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

func reportQuery(r *http.Request) (reports.Query, error) {
	q, err := validators.ParseComparisonQuery(r)
	if err != nil {
		return reports.Query{}, err
	}
	return reports.Query{RequestID: q.RequestID, Membership: q.Membership}, nil
}

// Compare returns the ranked comparison for one demand, or for every stored
// product when requestId is absent.
func Compare(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Compare(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CompareInline ranks a posted products/offers payload without storage.
func CompareInline(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.CompareBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.CompareInline(r.Context(), body.Products, body.Offers, body.Membership.Request())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CompareSavings(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Savings(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func CompareRanking(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Ranking(r.Context(), chi.URLParam(r, "productCode"), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
