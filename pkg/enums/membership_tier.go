package enums

import (
	"fmt"
	"strings"
)

// MembershipTier controls how many competing vendors a buyer sees per line item.
type MembershipTier string

const (
	MembershipTierStandard MembershipTier = "standard"
	MembershipTierPremium  MembershipTier = "premium"
)

var validMembershipTiers = []MembershipTier{
	MembershipTierStandard,
	MembershipTierPremium,
}

// String implements fmt.Stringer.
func (t MembershipTier) String() string {
	return string(t)
}

// IsValid reports whether the tier is recognized.
func (t MembershipTier) IsValid() bool {
	for _, candidate := range validMembershipTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMembershipTier converts a raw string into a MembershipTier.
func ParseMembershipTier(value string) (MembershipTier, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validMembershipTiers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership tier %q", value)
}
