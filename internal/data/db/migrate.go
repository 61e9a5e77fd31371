package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates indexes AutoMigrate cannot express. Statements are valid on
// both Postgres and SQLite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_outbox_event_unpublished",
			sql: `CREATE INDEX IF NOT EXISTS idx_outbox_event_unpublished
				ON outbox_event(created_at) WHERE published_at IS NULL;`,
		},
		{
			name: "idx_cart_entry_product_cart",
			sql:  `CREATE INDEX IF NOT EXISTS idx_cart_entry_product_cart ON cart_entry(product_id, cart_id);`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
