package database

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplySchemaUsesEmbeddedSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS customer_orders")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := applySchema(context.Background(), db, ""); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplySchemaReadsFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE custom_table (id INT);"), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE custom_table")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := applySchema(context.Background(), db, path); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplySchemaMissingFile(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if err := applySchema(context.Background(), db, filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Fatalf("expected an error for a missing schema file")
	}
}
