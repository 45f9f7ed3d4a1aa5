package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Database drivers recognised by Dump.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrorDump is the log-only view of an error. Nothing in it is sent to clients.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	DBDriver     string `json:"db_driver,omitempty"`
	DBCode       string `json:"db_code,omitempty"`
	DBConstraint string `json:"db_constraint,omitempty"`
	DBTable      string `json:"db_table,omitempty"`
	DBColumn     string `json:"db_column,omitempty"`
	DBDetail     string `json:"db_detail,omitempty"`
	DBMessage    string `json:"db_message,omitempty"`
}

// Fields flattens the dump into log fields; database fields only appear when a
// driver error was found in the chain.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.DBDriver == "" {
		return fields
	}
	fields["db_driver"] = d.DBDriver
	fields["db_code"] = d.DBCode
	fields["db_message"] = d.DBMessage
	for key, value := range map[string]string{
		"db_constraint": d.DBConstraint,
		"db_table":      d.DBTable,
		"db_column":     d.DBColumn,
		"db_detail":     d.DBDetail,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.DBDriver = DriverPostgres
		d.DBCode = pgxErr.Code
		d.DBConstraint = pgxErr.ConstraintName
		d.DBTable = pgxErr.TableName
		d.DBColumn = pgxErr.ColumnName
		d.DBDetail = pgxErr.Detail
		d.DBMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.DBDriver = DriverPostgres
		d.DBCode = string(pqErr.Code)
		d.DBConstraint = pqErr.Constraint
		d.DBTable = pqErr.Table
		d.DBColumn = pqErr.Column
		d.DBDetail = pqErr.Detail
		d.DBMessage = pqErr.Message
		return d
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		d.DBDriver = DriverSQLite
		d.DBCode = strconv.Itoa(int(liteErr.ExtendedCode))
		d.DBMessage = liteErr.Error()
		d.DBConstraint, d.DBTable, d.DBColumn = parseSQLiteConstraint(d.DBMessage)
		return d
	}

	return d
}

// parseSQLiteConstraint splits "UNIQUE constraint failed: stores.name" into the
// constraint kind and the first table.column it names.
func parseSQLiteConstraint(msg string) (kind, table, column string) {
	head, target, ok := strings.Cut(msg, " constraint failed")
	if !ok {
		return "", "", ""
	}
	kind = strings.TrimSpace(head)
	target = strings.TrimSpace(strings.TrimPrefix(target, ":"))
	if first, _, _ := strings.Cut(target, ","); first != "" {
		table, column, _ = strings.Cut(strings.TrimSpace(first), ".")
	}
	return kind, table, column
}
