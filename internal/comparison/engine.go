package comparison

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

// DefaultVATRate applies to offers that do not state one.
var DefaultVATRate = decimal.NewFromInt(20)

// RateSource hands out consistent rate snapshots.
type RateSource interface {
	Snapshot() fx.Snapshot
	ReportingCurrency() enums.Currency
}

// Engine ranks vendor offers per product and aggregates the result.
type Engine struct {
	rates      RateSource
	defaultVAT decimal.Decimal
	now        func() time.Time
}

type Option func(*Engine)

// WithClock overrides the GeneratedAt source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithDefaultVAT(rate decimal.Decimal) Option {
	return func(e *Engine) { e.defaultVAT = rate }
}

func NewEngine(rates RateSource, opts ...Option) (*Engine, error) {
	if rates == nil {
		return nil, fmt.Errorf("rate source required")
	}
	e := &Engine{
		rates:      rates,
		defaultVAT: DefaultVATRate,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) ReportingCurrency() enums.Currency {
	return e.rates.ReportingCurrency()
}

// RankedGroup is the ranked offer list for one product code.
type RankedGroup struct {
	ProductCode string
	Offers      []RankedVendorOffer
}

// Rank groups offers by product code in first-seen order and ranks each group
// ascending by reporting-currency total. Ties keep input order.
func (e *Engine) Rank(offers []VendorOffer) ([]RankedGroup, error) {
	if err := validateOffers(offers); err != nil {
		return nil, err
	}
	return e.rank(e.rates.Snapshot(), offers, nil)
}

// Compare ranks offers against the product catalog and aggregates rows.
// Products with no offers contribute no row. Rows follow catalog order.
// Offers whose code is not in the catalog are rejected as input errors.
func (e *Engine) Compare(requestID string, products []Product, offers []VendorOffer) (ComparisonResult, error) {
	if err := validateOffers(offers); err != nil {
		return ComparisonResult{}, err
	}
	catalog, order, err := indexProducts(products)
	if err != nil {
		return ComparisonResult{}, err
	}

	var unknown []string
	for i, offer := range offers {
		if _, ok := catalog[offer.Code()]; !ok {
			unknown = append(unknown, fmt.Sprintf("offers[%d].productCode %q", i, offer.Code()))
		}
	}
	if len(unknown) > 0 {
		return ComparisonResult{}, pkgerrors.New(pkgerrors.CodeValidation, "offers reference unknown products").
			WithDetails(map[string]any{"unknown": unknown})
	}
	return e.compare(requestID, catalog, order, offers)
}

// CompareKnown is Compare for stored data: offers whose code is missing or
// not in the catalog are skipped instead of failing the whole comparison.
// The skipped codes are returned in first-seen order.
func (e *Engine) CompareKnown(requestID string, products []Product, offers []VendorOffer) (ComparisonResult, []string, error) {
	catalog, order, err := indexProducts(products)
	if err != nil {
		return ComparisonResult{}, nil, err
	}

	known := make([]VendorOffer, 0, len(offers))
	var skipped []string
	seen := map[string]struct{}{}
	for _, offer := range offers {
		code := offer.Code()
		if _, ok := catalog[code]; ok {
			known = append(known, offer)
			continue
		}
		if _, dup := seen[code]; !dup {
			seen[code] = struct{}{}
			skipped = append(skipped, code)
		}
	}
	if err := validateOffers(known); err != nil {
		return ComparisonResult{}, skipped, err
	}
	result, err := e.compare(requestID, catalog, order, known)
	return result, skipped, err
}

func (e *Engine) compare(requestID string, catalog map[string]Product, order []string, offers []VendorOffer) (ComparisonResult, error) {
	snapshot := e.rates.Snapshot()
	groups, err := e.rank(snapshot, offers, catalog)
	if err != nil {
		return ComparisonResult{}, err
	}
	byCode := make(map[string][]RankedVendorOffer, len(groups))
	for _, group := range groups {
		byCode[group.ProductCode] = group.Offers
	}

	rows := make([]ComparisonRow, 0, len(groups))
	for _, code := range order {
		ranked, ok := byCode[code]
		if !ok {
			continue
		}
		product := catalog[code]
		rows = append(rows, ComparisonRow{
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    product.Quantity,
			Unit:        product.Unit,
			Vendors:     ranked,
			BestVendor:  ranked[0].Vendor,
			BestTotal:   ranked[0].TotalInReportingCurrency,
		})
	}

	result := e.Aggregate(rows)
	result.RequestID = requestID
	result.AppliedRates, err = appliedRates(snapshot, rows, result.ReportingCurrency)
	if err != nil {
		return ComparisonResult{}, err
	}
	return result, nil
}

// appliedRates lists the rate of every non-reporting currency seen in rows,
// always including USD so exports can show it in the header.
func appliedRates(snapshot fx.Snapshot, rows []ComparisonRow, target enums.Currency) ([]AppliedRate, error) {
	seen := map[enums.Currency]struct{}{}
	var currencies []enums.Currency
	add := func(c enums.Currency) {
		if c == target {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		currencies = append(currencies, c)
	}
	for _, row := range rows {
		for _, v := range row.Vendors {
			add(v.Currency)
		}
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	out := make([]AppliedRate, 0, len(currencies)+1)
	for _, c := range currencies {
		rate, err := snapshot.Rate(c, target)
		if err != nil {
			return nil, err
		}
		out = append(out, AppliedRate{From: c, To: target, Rate: rate})
	}
	if _, ok := seen[enums.CurrencyUSD]; !ok && target != enums.CurrencyUSD {
		if rate, err := snapshot.Rate(enums.CurrencyUSD, target); err == nil {
			out = append(out, AppliedRate{From: enums.CurrencyUSD, To: target, Rate: rate})
		}
	}
	return out, nil
}

// Aggregate fills the demand-level fields for already-ranked rows. The first
// row holding the lowest best total wins ties.
func (e *Engine) Aggregate(rows []ComparisonRow) ComparisonResult {
	result := ComparisonResult{
		ReportingCurrency: e.rates.ReportingCurrency(),
		Rows:              rows,
		AppliedRates:      []AppliedRate{},
		TotalProducts:     len(rows),
		TotalVendors:      countVendors(rows),
		GeneratedAt:       e.now(),
	}
	if result.Rows == nil {
		result.Rows = []ComparisonRow{}
	}
	found := false
	for _, row := range rows {
		if len(row.Vendors) == 0 {
			continue
		}
		if !found || row.BestTotal.LessThan(result.BestOverallTotal) {
			result.BestOverallVendor = row.BestVendor
			result.BestOverallTotal = row.BestTotal
			found = true
		}
	}
	return result
}

func (e *Engine) rank(snapshot fx.Snapshot, offers []VendorOffer, catalog map[string]Product) ([]RankedGroup, error) {
	target := e.rates.ReportingCurrency()
	index := make(map[string]int)
	var groups []RankedGroup

	for _, offer := range offers {
		ranked := RankedVendorOffer{VendorOffer: offer}
		if ranked.Currency == "" {
			ranked.Currency = target
		}
		if ranked.Quantity.IsZero() {
			if product, ok := catalog[offer.Code()]; ok {
				ranked.Quantity = product.Quantity
			}
		}
		if ranked.VATRate == nil {
			vat := e.defaultVAT
			ranked.VATRate = &vat
		}
		ranked.Total = ranked.Quantity.Mul(ranked.UnitPrice)

		total, err := snapshot.LineTotal(ranked.Quantity, ranked.UnitPrice, ranked.Currency, ranked.ShippingCost, target)
		if err != nil {
			return nil, err
		}
		ranked.TotalInReportingCurrency = total

		code := offer.Code()
		pos, ok := index[code]
		if !ok {
			pos = len(groups)
			index[code] = pos
			groups = append(groups, RankedGroup{ProductCode: code})
		}
		groups[pos].Offers = append(groups[pos].Offers, ranked)
	}

	for i := range groups {
		vendors := groups[i].Offers
		sort.SliceStable(vendors, func(a, b int) bool {
			return vendors[a].TotalInReportingCurrency.LessThan(vendors[b].TotalInReportingCurrency)
		})
		for j := range vendors {
			vendors[j].Rank = j + 1
			vendors[j].IsBest = j == 0
		}
	}
	return groups, nil
}

// indexProducts keys products by code; the first product wins when codes
// repeat across demands.
func indexProducts(products []Product) (map[string]Product, []string, error) {
	catalog := make(map[string]Product, len(products))
	order := make([]string, 0, len(products))
	fields := map[string]string{}
	for i, product := range products {
		code := strings.TrimSpace(product.Code)
		if code == "" {
			fields[fmt.Sprintf("products[%d].code", i)] = "is required"
			continue
		}
		if product.Quantity.IsNegative() {
			fields[fmt.Sprintf("products[%d].quantity", i)] = "cannot be negative"
			continue
		}
		if _, seen := catalog[code]; seen {
			continue
		}
		product.Code = code
		catalog[code] = product
		order = append(order, code)
	}
	if len(fields) > 0 {
		return nil, nil, invalidFields("invalid product", fields)
	}
	return catalog, order, nil
}

func validateOffers(offers []VendorOffer) error {
	fields := map[string]string{}
	for i, offer := range offers {
		prefix := fmt.Sprintf("offers[%d]", i)
		if strings.TrimSpace(offer.Vendor) == "" {
			fields[prefix+".vendor"] = "is required"
		}
		if offer.Code() == "" {
			fields[prefix+".productCode"] = "is required"
		}
		if offer.Currency != "" && !offer.Currency.IsValid() {
			fields[prefix+".currency"] = fmt.Sprintf("unsupported currency %q", offer.Currency)
		}
		if offer.UnitPrice.IsNegative() {
			fields[prefix+".unitPrice"] = "cannot be negative"
		}
		if offer.Quantity.IsNegative() {
			fields[prefix+".quantity"] = "cannot be negative"
		}
		if offer.ShippingCost.IsNegative() {
			fields[prefix+".shippingCost"] = "cannot be negative"
		}
		if offer.VATRate != nil && offer.VATRate.IsNegative() {
			fields[prefix+".vatRate"] = "cannot be negative"
		}
	}
	if len(fields) > 0 {
		return invalidFields("invalid offer", fields)
	}
	return nil
}

func invalidFields(msg string, fields map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"fields": fields})
}

func countVendors(rows []ComparisonRow) int {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for _, v := range row.Vendors {
			seen[v.Vendor] = struct{}{}
		}
	}
	return len(seen)
}
