package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID        string `gorm:"primaryKey"`
	RequestID string
	CreatedAt time.Time
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&scopedRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestScopesFilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []scopedRow{
		{ID: "b", RequestID: "R1", CreatedAt: at},
		{ID: "a", RequestID: "R1", CreatedAt: at},
		{ID: "c", RequestID: "R1", CreatedAt: at.Add(-time.Hour)},
		{ID: "d", RequestID: "R2", CreatedAt: at},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got []scopedRow
	if err := db.Scopes(ScopeRequest("R1"), Chronological).Find(&got).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	ids := ""
	for _, r := range got {
		ids += r.ID
	}
	if ids != "cab" {
		t.Fatalf("expected order cab, got %s", ids)
	}

	var all int64
	if err := db.Model(&scopedRow{}).Scopes(ScopeRequest("")).Count(&all).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if all != 4 {
		t.Fatalf("expected 4 rows without scope, got %d", all)
	}
}
