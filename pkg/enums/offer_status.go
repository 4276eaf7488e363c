package enums

import "fmt"

// OfferStatus tracks whether a vendor offer participates in comparisons.
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusInactive OfferStatus = "inactive"
	OfferStatusPending  OfferStatus = "pending"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusActive,
	OfferStatusInactive,
	OfferStatusPending,
}

// String implements fmt.Stringer.
func (s OfferStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is recognized.
func (s OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOfferStatus converts a raw string into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
