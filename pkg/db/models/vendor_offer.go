package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

// VendorOffer is a supplier's quote for one product of a demand.
// LegacyProductCode carries the code imported from the older offer sheets
// and is consulted only when ProductCode is empty.
type VendorOffer struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RequestID         string              `gorm:"column:request_id;not null;index"`
	Vendor            string              `gorm:"column:vendor;not null"`
	ProductCode       string              `gorm:"column:product_code"`
	LegacyProductCode string              `gorm:"column:urun_kodu"`
	Quantity          decimal.Decimal     `gorm:"column:quantity;type:numeric(18,4);not null"`
	Unit              string              `gorm:"column:unit"`
	Currency          enums.Currency      `gorm:"column:currency;type:varchar(3);not null"`
	UnitPrice         decimal.Decimal     `gorm:"column:unit_price;type:numeric(18,4);not null"`
	ShippingCost      decimal.NullDecimal `gorm:"column:shipping_cost;type:numeric(18,4)"`
	ShippingType      *string             `gorm:"column:shipping_type"`
	Brand             *string             `gorm:"column:brand"`
	LeadTimeDays      *int                `gorm:"column:lead_time_days"`
	DeliveryDate      *time.Time          `gorm:"column:delivery_date"`
	PaymentTerms      *string             `gorm:"column:payment_terms"`
	MinOrderQty       decimal.NullDecimal `gorm:"column:min_order_qty;type:numeric(18,4)"`
	VATRate           decimal.NullDecimal `gorm:"column:vat_rate;type:numeric(5,2)"`
	Notes             *string             `gorm:"column:notes"`
	Status            enums.OfferStatus   `gorm:"column:status;not null;default:'active'"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (VendorOffer) TableName() string { return "vendor_offers" }

func (o *VendorOffer) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OfferStatusActive
	}
	return nil
}
