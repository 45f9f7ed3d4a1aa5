package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromConn(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewFromConn(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Dialect() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", client.Dialect())
	}
}

func TestNewLogsDialect(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	client, err := New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, logg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()
	if !strings.Contains(logs.String(), `"db_driver":"sqlite"`) {
		t.Fatalf("expected dialect in logs, got %s", logs.String())
	}
}

func TestIsUniqueViolation_SQLiteDuplicate(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestIsUniqueViolation_PgError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "stores_name_key"})
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected pg unique violation")
	}
	if !IsUniqueViolation(err, "stores_name_key") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(err, "tags_store_id_name_key") {
		t.Fatal("expected constraint mismatch")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a unique violation")
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)
	var row testModel
	err := db.First(&row, 999).Error
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
