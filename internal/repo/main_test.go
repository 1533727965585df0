package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/eld-logbook/testutil"
)

// TestMain runs before any test in the repo_test package.
// It applies all pending migrations to the test database so individual tests
// never need to think about schema state. With TEST_USE_CONTAINERS=1 and no
// TEST_DATABASE_URL, a disposable Postgres container is started first.
func TestMain(m *testing.M) {
	stop, err := testutil.StartPostgres(context.Background())
	if err != nil {
		log.Fatalf("TestMain: %v", err)
	}

	code := run(m)
	stop()
	os.Exit(code)
}

func run(m *testing.M) int {
	if os.Getenv(testutil.DSNEnv) == "" {
		// No test DB configured: integration tests skip themselves, the
		// pgxmock tests still run.
		return m.Run()
	}

	if err := testutil.MigrateUp(context.Background(), os.Getenv(testutil.DSNEnv)); err != nil {
		log.Fatalf("TestMain: %v", err)
	}

	return m.Run()
}
