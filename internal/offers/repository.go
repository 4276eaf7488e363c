package offers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/internal/repo"
	"github.com/teklifbul/mukayese-backend/pkg/db/models"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

// Repository reads the products and offers a comparison runs over.
type Repository interface {
	ListProducts(ctx context.Context, requestID string) ([]comparison.Product, error)
	ListOffers(ctx context.Context, requestID string) ([]comparison.VendorOffer, error)
}

// GormRepository is the Postgres/SQLite implementation.
type GormRepository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) (*GormRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &GormRepository{Base: repo.NewBase(db)}, nil
}

// ListProducts returns the demand's products in insertion order. An empty
// requestID lists products of every demand.
func (r *GormRepository) ListProducts(ctx context.Context, requestID string) ([]comparison.Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).
		Scopes(repo.ScopeRequest(requestID), repo.Chronological).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]comparison.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProduct(row))
	}
	return out, nil
}

// ListOffers returns active offers in insertion order so ranking ties resolve
// the same way on every call.
func (r *GormRepository) ListOffers(ctx context.Context, requestID string) ([]comparison.VendorOffer, error) {
	var rows []models.VendorOffer
	if err := r.DB(ctx).
		Scopes(repo.ScopeRequest(requestID), repo.Chronological).
		Where("status = ?", enums.OfferStatusActive).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	out := make([]comparison.VendorOffer, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOffer(row))
	}
	return out, nil
}

func toProduct(m models.Product) comparison.Product {
	return comparison.Product{
		Code:     m.Code,
		Name:     m.Name,
		Unit:     m.Unit,
		Quantity: m.Quantity,
	}
}

func toOffer(m models.VendorOffer) comparison.VendorOffer {
	offer := comparison.VendorOffer{
		Vendor:            m.Vendor,
		ProductCode:       m.ProductCode,
		LegacyProductCode: m.LegacyProductCode,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		Currency:          m.Currency,
		UnitPrice:         m.UnitPrice,
		ShippingType:      deref(m.ShippingType),
		Brand:             deref(m.Brand),
		LeadTimeDays:      m.LeadTimeDays,
		DeliveryDate:      m.DeliveryDate,
		PaymentTerms:      deref(m.PaymentTerms),
		Notes:             deref(m.Notes),
	}
	if m.ShippingCost.Valid {
		offer.ShippingCost = m.ShippingCost.Decimal
	}
	offer.MinOrderQty = nullable(m.MinOrderQty)
	offer.VATRate = nullable(m.VATRate)
	return offer
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
