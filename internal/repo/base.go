package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by read repositories that share one gorm connection.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx, or the raw connection for a nil ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// ScopeRequest narrows a query to one demand. An empty requestID keeps every
// demand in scope.
func ScopeRequest(requestID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if requestID == "" {
			return tx
		}
		return tx.Where("request_id = ?", requestID)
	}
}

// Chronological orders rows by insertion time with the id as tie breaker.
func Chronological(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at ASC").Order("id ASC")
}
