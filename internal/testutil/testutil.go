// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/userdesk/user-management/internal/infrastructure/db/sqlstore"
)

// OpenInMemoryDB opens a migrated SQLite database private to the calling test.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver:       sqlstore.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = sqlstore.Close(db) })
	return db
}
