package controllers

import (
	"net/http"

	"github.com/teklifbul/mukayese-backend/api/responses"
	"github.com/teklifbul/mukayese-backend/api/validators"
	"github.com/teklifbul/mukayese-backend/internal/reports"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

// ExportComparison renders the comparison as a spreadsheet attachment.
func ExportComparison(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := validators.ParseExportMode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.Export(r.Context(), q, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteDocument(w, doc)
	}
}
