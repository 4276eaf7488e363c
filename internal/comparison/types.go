package comparison

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

// Product is a requested line item.
type Product struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
}

// VendorOffer is one supplier's raw quote for one product.
type VendorOffer struct {
	Vendor            string           `json:"vendor"`
	ProductCode       string           `json:"productCode,omitempty"`
	LegacyProductCode string           `json:"urun_kodu,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	Unit              string           `json:"unit,omitempty"`
	Currency          enums.Currency   `json:"currency"`
	UnitPrice         decimal.Decimal  `json:"unitPrice"`
	ShippingCost      decimal.Decimal  `json:"shippingCost"`
	ShippingType      string           `json:"shippingType,omitempty"`
	Brand             string           `json:"brand,omitempty"`
	LeadTimeDays      *int             `json:"leadTimeDays,omitempty"`
	DeliveryDate      *time.Time       `json:"deliveryDate,omitempty"`
	PaymentTerms      string           `json:"paymentTerms,omitempty"`
	MinOrderQty       *decimal.Decimal `json:"minOrderQty,omitempty"`
	VATRate           *decimal.Decimal `json:"vatRate,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// Code returns the product code, falling back to the legacy field.
func (o VendorOffer) Code() string {
	if code := strings.TrimSpace(o.ProductCode); code != "" {
		return code
	}
	return strings.TrimSpace(o.LegacyProductCode)
}

// RankedVendorOffer is an offer with its derived totals and position.
// Quantity, Currency and VATRate hold the resolved values used for ranking.
type RankedVendorOffer struct {
	VendorOffer
	Total                    decimal.Decimal `json:"total"`
	TotalInReportingCurrency decimal.Decimal `json:"totalInReportingCurrency"`
	Rank                     int             `json:"rank"`
	IsBest                   bool            `json:"isBest"`
}

// ComparisonRow is one product with its vendors ordered by rank.
type ComparisonRow struct {
	ProductCode string              `json:"productCode"`
	ProductName string              `json:"productName"`
	Quantity    decimal.Decimal     `json:"quantity"`
	Unit        string              `json:"unit"`
	Vendors     []RankedVendorOffer `json:"vendors"`
	BestVendor  string              `json:"bestVendor"`
	BestTotal   decimal.Decimal     `json:"bestTotal"`
}

// ComparisonResult is the ranked snapshot for one demand, or for all of them
// when RequestID is empty.
type ComparisonResult struct {
	RequestID         string            `json:"requestId,omitempty"`
	ReportingCurrency enums.Currency    `json:"reportingCurrency"`
	Rows              []ComparisonRow   `json:"rows"`
	BestOverallVendor string            `json:"bestOverallVendor"`
	BestOverallTotal  decimal.Decimal   `json:"bestOverallTotal"`
	TotalProducts     int               `json:"totalProducts"`
	TotalVendors      int               `json:"totalVendors"`
	Membership        *MembershipConfig `json:"membership,omitempty"`
	AppliedRates      []AppliedRate     `json:"appliedRates"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

// AppliedRate records a conversion rate used for the result so renderers can
// reproduce the same totals.
type AppliedRate struct {
	From enums.Currency  `json:"from"`
	To   enums.Currency  `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// RateFor returns the applied rate for from -> ReportingCurrency.
func (r ComparisonResult) RateFor(from enums.Currency) (decimal.Decimal, bool) {
	if from == r.ReportingCurrency {
		return decimal.NewFromInt(1), true
	}
	for _, rate := range r.AppliedRates {
		if rate.From == from && rate.To == r.ReportingCurrency {
			return rate.Rate, true
		}
	}
	return decimal.Zero, false
}

// Clone returns a deep copy of the result's rows and vendor slices.
func (r ComparisonResult) Clone() ComparisonResult {
	out := r
	if r.Rows != nil {
		out.Rows = make([]ComparisonRow, len(r.Rows))
		for i, row := range r.Rows {
			out.Rows[i] = row
			if row.Vendors != nil {
				out.Rows[i].Vendors = append([]RankedVendorOffer(nil), row.Vendors...)
			}
		}
	}
	if r.AppliedRates != nil {
		out.AppliedRates = append([]AppliedRate(nil), r.AppliedRates...)
	}
	if r.Membership != nil {
		m := *r.Membership
		out.Membership = &m
	}
	return out
}

// MembershipConfig controls what a viewer may see and how exports are split.
// A MaxVendorsPerRow of zero means no cap.
type MembershipConfig struct {
	Tier               enums.MembershipTier `json:"tier"`
	MaxVendorsPerRow   int                  `json:"maxVendorsPerRow"`
	MaxVendorsPerSheet int                  `json:"maxVendorsPerSheet"`
}

// ProductSavings is the per-row savings line.
type ProductSavings struct {
	ProductCode    string          `json:"productCode"`
	ProductName    string          `json:"productName"`
	BestVendor     string          `json:"bestVendor"`
	BestTotal      decimal.Decimal `json:"bestTotal"`
	WorstTotal     decimal.Decimal `json:"worstTotal"`
	Savings        decimal.Decimal `json:"savings"`
	SavingsPercent decimal.Decimal `json:"savingsPercent"`
	VendorCount    int             `json:"vendorCount"`
}

// SavingsSummary rolls the visible rows up into demand-level savings.
type SavingsSummary struct {
	ReportingCurrency     enums.Currency   `json:"reportingCurrency"`
	TotalSavings          decimal.Decimal  `json:"totalSavings"`
	AverageSavingsPercent decimal.Decimal  `json:"averageSavingsPercent"`
	HighestSavings        decimal.Decimal  `json:"highestSavings"`
	HighestSavingsProduct string           `json:"highestSavingsProduct,omitempty"`
	Products              []ProductSavings `json:"products"`
}
