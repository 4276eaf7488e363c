package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is one requested line item of a demand.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RequestID string          `gorm:"column:request_id;not null;index"`
	Code      string          `gorm:"column:code;not null"`
	Name      string          `gorm:"column:name;not null"`
	Unit      string          `gorm:"column:unit;not null"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(18,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
