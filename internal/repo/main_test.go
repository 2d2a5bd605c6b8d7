package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/eld-logbook/migrations"
	"github.com/pkordes/eld-logbook/testutil"
)

// TestMain migrates the integration database once per test binary. Without
// TEST_DATABASE_URL every repo test skips itself, so there is nothing to do.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		db := testutil.MustOpenSQLDB(dsn)
		if _, err := migrations.Up(context.Background(), db); err != nil {
			log.Fatalf("repo_test: %v", err)
		}
		db.Close()
	}
	os.Exit(m.Run())
}
