package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mindgarden/backend/internal/db"
	"mindgarden/backend/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(a)
			if err != nil {
				return err
			}
			defer database.Close()

			a.logger.Info("migrations applied successfully", "db", a.cfg.DBPath)
			return nil
		},
	}
}

// openDatabase opens the SQLite file and brings its schema up to date.
func openDatabase(a *app) (*sql.DB, error) {
	database, err := db.OpenSQLite(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applied, err := db.RunMigrations(database, migrationSource(a.cfg.MigrationsDir))
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	for _, name := range applied {
		a.logger.Info("applied migration", "name", name)
	}
	return database, nil
}

func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}
