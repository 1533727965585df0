// Package migrations holds the goose SQL migrations for the logbook schema
// and a provider constructor shared by the server tooling and tests.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Tables lists the tables the migrations create, parents first.
var Tables = []string{"drivers", "logbook_days", "duty_intervals", "stop_events"}

// NewProvider returns a goose provider over the embedded migrations.
// db must be opened with the "pgx" database/sql driver.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.NewProvider: %w", err)
	}
	return p, nil
}
