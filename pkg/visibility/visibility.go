package visibility

import (
	"fmt"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

// MembershipRequest is what a caller asks for; nil overrides fall back to the
// tier defaults.
type MembershipRequest struct {
	Tier               string
	MaxVendorsPerRow   *int
	MaxVendorsPerSheet *int
}

// ResolveMembership turns a request into a validated config. A tier with a
// row cap cannot be widened past it by an override.
func ResolveMembership(req MembershipRequest, defaults config.MembershipConfig) (comparison.MembershipConfig, error) {
	rawTier := req.Tier
	if rawTier == "" {
		rawTier = defaults.DefaultTier
	}
	tier, err := enums.ParseMembershipTier(rawTier)
	if err != nil {
		return comparison.MembershipConfig{}, invalid("membership", err.Error())
	}

	tierCap := defaults.PremiumMaxVendorsPerRow
	if tier == enums.MembershipTierStandard {
		tierCap = defaults.StandardMaxVendorsPerRow
	}
	cfg := comparison.MembershipConfig{
		Tier:               tier,
		MaxVendorsPerRow:   tierCap,
		MaxVendorsPerSheet: defaults.MaxVendorsPerSheet,
	}

	if req.MaxVendorsPerRow != nil {
		n := *req.MaxVendorsPerRow
		switch {
		case n < 0:
			return comparison.MembershipConfig{}, invalid("maxVendorsPerRow", "cannot be negative")
		case tierCap > 0 && (n == 0 || n > tierCap):
			return comparison.MembershipConfig{}, invalid("maxVendorsPerRow",
				fmt.Sprintf("%s tier allows at most %d vendors per row", tier, tierCap))
		}
		cfg.MaxVendorsPerRow = n
	}

	if req.MaxVendorsPerSheet != nil {
		cfg.MaxVendorsPerSheet = *req.MaxVendorsPerSheet
	}
	if cfg.MaxVendorsPerSheet < 1 || cfg.MaxVendorsPerSheet > config.TemplateVendorSlots {
		return comparison.MembershipConfig{}, invalid("maxVendorsPerSheet",
			fmt.Sprintf("must be between 1 and %d", config.TemplateVendorSlots))
	}
	return cfg, nil
}

// ApplyMembership trims every row to the cheapest MaxVendorsPerRow vendors.
// The input is left untouched and applying the same config twice is a no-op.
func ApplyMembership(result comparison.ComparisonResult, cfg comparison.MembershipConfig) comparison.ComparisonResult {
	out := result.Clone()
	if cfg.MaxVendorsPerRow > 0 {
		for i := range out.Rows {
			if len(out.Rows[i].Vendors) > cfg.MaxVendorsPerRow {
				out.Rows[i].Vendors = out.Rows[i].Vendors[:cfg.MaxVendorsPerRow:cfg.MaxVendorsPerRow]
			}
		}
	}
	out.TotalVendors = visibleVendors(out.Rows)
	applied := cfg
	out.Membership = &applied
	return out
}

func visibleVendors(rows []comparison.ComparisonRow) int {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for _, v := range row.Vendors {
			seen[v.Vendor] = struct{}{}
		}
	}
	return len(seen)
}

func invalid(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", field, msg)).
		WithDetails(map[string]any{"fields": map[string]string{field: msg}})
}
