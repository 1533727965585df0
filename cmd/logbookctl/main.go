// Command logbookctl runs operator tasks against the ELD logbook database:
// schema migrations and ad-hoc hours-of-service summaries.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Context is passed to every command's Run method.
type Context struct {
	DatabaseURL string
	Out         io.Writer
}

// CLI is the command tree.
type CLI struct {
	DatabaseURL string `name:"database-url" env:"DATABASE_URL" required:"" help:"Postgres connection string."`

	Migrate struct {
		Up     MigrateUpCmd     `cmd:"" help:"Apply all pending migrations."`
		DownTo MigrateDownToCmd `cmd:"" name:"down-to" help:"Roll back to a schema version."`
		Status MigrateStatusCmd `cmd:"" help:"List migrations and whether they are applied."`
	} `cmd:"" help:"Manage the database schema."`

	Hours HoursCmd `cmd:"" help:"Print a driver's on-duty hours summary."`
}

func newParser(cli *CLI, out io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("logbookctl"),
		kong.Description("Operator tool for the ELD logbook"),
		kong.UsageOnError(),
		kong.Writers(out, os.Stderr),
	)
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&Context{DatabaseURL: cli.DatabaseURL, Out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
