package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/visibility"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseOptionalQueryInt is ParseQueryInt for parameters with no default.
func ParseOptionalQueryInt(r *http.Request, key string, min, max int) (*int, error) {
	if strings.TrimSpace(r.URL.Query().Get(key)) == "" {
		return nil, nil
	}
	value, err := ParseQueryInt(r, key, 0, min, max)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ComparisonQuery is the shared scope of the comparison and export routes.
type ComparisonQuery struct {
	RequestID  string `json:"requestId" validate:"max=64"`
	Membership visibility.MembershipRequest
}

func ParseComparisonQuery(r *http.Request) (ComparisonQuery, error) {
	q := r.URL.Query()
	membership := MembershipBody{
		Tier: SanitizeString(q.Get("membership"), 0),
	}
	var err error
	if membership.MaxVendorsPerRow, err = ParseOptionalQueryInt(r, "maxVendorsPerRow", 0, 1000); err != nil {
		return ComparisonQuery{}, err
	}
	if membership.MaxVendorsPerSheet, err = ParseOptionalQueryInt(r, "maxVendorsPerSheet", 1, 5); err != nil {
		return ComparisonQuery{}, err
	}
	if err := validate.Struct(membership); err != nil {
		return ComparisonQuery{}, formatValidationErrors(err)
	}

	out := ComparisonQuery{
		RequestID:  SanitizeString(q.Get("requestId"), 0),
		Membership: membership.Request(),
	}
	if err := validate.Struct(out); err != nil {
		return ComparisonQuery{}, formatValidationErrors(err)
	}
	return out, nil
}

// ParseExportMode reads the mode parameter, defaulting to the template.
func ParseExportMode(r *http.Request) (enums.ExportMode, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("mode"))
	if raw == "" {
		return enums.ExportModeTemplate, nil
	}
	mode, err := enums.ParseExportMode(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid export mode").
			WithDetails(map[string]any{"fields": map[string]string{"mode": "must be template or csv"}})
	}
	return mode, nil
}
