// Package testutil provides shared helpers for service and handler tests:
// an isolated in-memory database per test, fixture builders, and error
// assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"moneta/internal/models"
)

var dbCounter int64

// SetupTestDB opens an isolated in-memory SQLite database and migrates the
// full schema. Each call gets its own named database so parallel tests never
// share state; shared cache keeps it visible across pooled connections.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// Keep a single connection so the in-memory database stays alive for
	// the duration of the test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.InstitutionLink{},
		&models.Account{},
		&models.Transaction{},
		&models.RecurringStream{},
		&models.Security{},
		&models.Holding{},
		&models.InvestmentTransaction{},
		&models.Liability{},
		&models.BalanceSnapshot{},
		&models.NetWorthSnapshot{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}
	return db
}
