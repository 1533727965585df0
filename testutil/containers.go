package testutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres launches a throwaway Postgres container and points
// TEST_DATABASE_URL at it, so NewPool, NewSQLDB and TestMain pick it up.
//
// It is a no-op when TEST_DATABASE_URL is already set or when
// TEST_USE_CONTAINERS is not "1". The returned stop function terminates the
// container and is always safe to call.
func StartPostgres(ctx context.Context) (stop func(), err error) {
	noop := func() {}
	if os.Getenv(DSNEnv) != "" || os.Getenv("TEST_USE_CONTAINERS") != "1" {
		return noop, nil
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "eld",
			"POSTGRES_PASSWORD": "eld",
			"POSTGRES_DB":       "eld_test",
		},
		// Postgres restarts once after initdb, so wait for the second ready line.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return noop, fmt.Errorf("testutil.StartPostgres: start container: %w", err)
	}
	stop = func() { _ = pgC.Terminate(context.Background()) }

	host, err := pgC.Host(ctx)
	if err != nil {
		stop()
		return noop, fmt.Errorf("testutil.StartPostgres: host: %w", err)
	}
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	if err != nil {
		stop()
		return noop, fmt.Errorf("testutil.StartPostgres: port: %w", err)
	}

	dsn := "postgres://eld:eld@" + host + ":" + port.Port() + "/eld_test?sslmode=disable"
	if err := os.Setenv(DSNEnv, dsn); err != nil {
		stop()
		return noop, fmt.Errorf("testutil.StartPostgres: set env: %w", err)
	}
	return stop, nil
}
