// Package testhelpers opens throwaway databases for repository and router tests.
package testhelpers

import (
	"testing"

	familydomain "family-recipes-go/internal/domain/family"
	recipedomain "family-recipes-go/internal/domain/recipe"
	userdomain "family-recipes-go/internal/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the application owns, in dependency order.
func Models() []any {
	return []any{
		&userdomain.User{},
		&familydomain.Family{},
		&familydomain.Membership{},
		&recipedomain.Recipe{},
		&recipedomain.Ingredient{},
		&recipedomain.Instruction{},
		&recipedomain.Photo{},
		&recipedomain.Tag{},
		&recipedomain.Category{},
	}
}

// NewSQLite returns an in-memory database with the schema applied. The pool is
// pinned to one connection so every query sees the same memory database.
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}
