// Package testdb opens throwaway sqlite databases carrying the catalog schema.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
	"github.com/stretchr/testify/require"
)

var counter atomic.Int64

// Open returns a client bound to a private in-memory database with the schema applied.
func Open(t *testing.T) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))

	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.AutoMigrateModels(client.DB()))
	return client
}
