package db

import (
	"errors"
	"io/fs"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"family-recipes-go/migrations"
	"family-recipes-go/pkg/logger"
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return gormDB, mock
}

func migrationFiles(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, contents := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(contents)}
	}
	return fsys
}

func expectApplied(mock sqlmock.Sqlmock, name string, applied bool) {
	count := 0
	if applied {
		count = 1
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM schema_migrations WHERE filename =")).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestMigrateAppliesPendingFiles(t *testing.T) {
	gormDB, mock := newMockDB(t)
	files := migrationFiles(map[string]string{
		"001_init.sql":    "CREATE TABLE users (id UUID PRIMARY KEY);",
		"002_recipes.sql": "CREATE TABLE recipes (id UUID PRIMARY KEY);",
		"003_empty.sql":   "   \n",
		"README.md":       "not a migration",
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	expectApplied(mock, "001_init.sql", true)
	expectApplied(mock, "002_recipes.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE recipes")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002_recipes.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectApplied(mock, "003_empty.sql", false)

	if err := MigrateFS(gormDB, files, logger.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	gormDB, mock := newMockDB(t)
	files := migrationFiles(map[string]string{
		"001_init.sql": "CREATE TABLE users (id UUID PRIMARY KEY);",
		"002_bad.sql":  "CREATE TABLE broken (",
	})
	syntaxErr := errors.New("syntax error at end of input")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	expectApplied(mock, "001_init.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("001_init.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectApplied(mock, "002_bad.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken")).WillReturnError(syntaxErr)
	mock.ExpectRollback()

	err := MigrateFS(gormDB, files, logger.NewNop())
	if !errors.Is(err, syntaxErr) {
		t.Fatalf("expected wrapped syntax error, got %v", err)
	}
	if !strings.Contains(err.Error(), "002_bad.sql") {
		t.Fatalf("expected file name in error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	names, err := migrationNames(migrations.Files)
	if err != nil {
		t.Fatalf("list embedded migrations: %v", err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Fatalf("expected 001_init.sql first, got %v", names)
	}

	schema, err := fs.ReadFile(migrations.Files, names[0])
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, table := range []string{"users", "families", "family_members", "recipes", "recipe_photos"} {
		if !strings.Contains(string(schema), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("schema missing table %s", table)
		}
	}
}
