package errors

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpDecodesPostgresError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "stores_name_key",
		TableName:      "stores",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeStorage, fmt.Errorf("insert store: %w", pgErr), "storage")

	d := Dump(err)
	if d.Code != CodeStorage || d.DBDriver != DriverPostgres || d.DBCode != "23505" {
		t.Fatalf("unexpected dump %+v", d)
	}
	fields := d.Fields()
	if fields["db_constraint"] != "stores_name_key" || fields["db_table"] != "stores" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["db_column"]; ok {
		t.Fatal("empty database fields should be omitted")
	}
}

func TestDumpDecodesSQLiteConstraint(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec(`CREATE TABLE stores (id INTEGER PRIMARY KEY, name TEXT UNIQUE)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO stores (name) VALUES ('corner')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, dupErr := conn.Exec(`INSERT INTO stores (name) VALUES ('corner')`)
	if dupErr == nil {
		t.Fatal("expected unique violation")
	}

	d := Dump(fmt.Errorf("create store: %w", dupErr))
	if d.DBDriver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %+v", d)
	}
	if d.DBConstraint != "UNIQUE" || d.DBTable != "stores" || d.DBColumn != "name" {
		t.Fatalf("unexpected constraint fields %+v", d)
	}
	if d.DBCode != "2067" {
		t.Fatalf("expected extended unique code, got %q", d.DBCode)
	}
}

func TestDumpPlainErrorHasNoDatabaseFields(t *testing.T) {
	fields := Dump(fmt.Errorf("boom")).Fields()
	if _, ok := fields["db_driver"]; ok {
		t.Fatalf("unexpected database fields %v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestParseSQLiteConstraint(t *testing.T) {
	kind, table, column := parseSQLiteConstraint("UNIQUE constraint failed: tags.store_id, tags.name")
	if kind != "UNIQUE" || table != "tags" || column != "store_id" {
		t.Fatalf("got %q %q %q", kind, table, column)
	}
	kind, table, _ = parseSQLiteConstraint("FOREIGN KEY constraint failed")
	if kind != "FOREIGN KEY" || table != "" {
		t.Fatalf("got %q %q", kind, table)
	}
	if kind, _, _ := parseSQLiteConstraint("database is locked"); kind != "" {
		t.Fatalf("expected no constraint, got %q", kind)
	}
}
