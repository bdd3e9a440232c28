package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mdewit/matchbox/assets"
	"github.com/mdewit/matchbox/internal"
	"github.com/mdewit/matchbox/internal/db"
	"github.com/mdewit/matchbox/internal/migrate"
)

const helpText = `Usage: dbmigrate [sqlite_file]`

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, helpText)
		os.Exit(1)
	}

	dbFile := os.Args[1]

	sqlDB, err := db.OpenSQLite(dbFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	meta := migrate.Metadata{
		AppVersion: internal.BuildRevision,
		Timestamp:  time.Now(),
	}

	migrations, err := migrate.RunFS(ctx, sqlDB, assets.MigrationsFS, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	for _, migration := range migrations {
		fmt.Printf("%d: %s\n", migration.Sequence, migration.Filename)
	}
}
