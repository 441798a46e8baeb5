// Package testutil provides the shared postgres handle for repo integration
// tests. Tests are skipped unless TEST_POSTGRES_DSN points at a disposable
// database; each test runs inside a transaction that is rolled back on
// cleanup, so tests never see each other's rows.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lectorhq/lector-backend/internal/db"
)

var (
	once   sync.Once
	shared *gorm.DB
	initE  error
)

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}
	once.Do(func() {
		shared, initE = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if initE != nil {
			return
		}
		if initE = shared.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; initE != nil {
			return
		}
		initE = db.AutoMigrateAll(shared)
	})
	if initE != nil {
		tb.Fatalf("init test postgres: %v", initE)
	}
	return shared
}

// Tx hands out a transaction that is rolled back when the test finishes.
func Tx(tb testing.TB) *gorm.DB {
	tb.Helper()
	tx := DB(tb).Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}
