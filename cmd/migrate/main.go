package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/syshair/backend/internal/config"
	"github.com/syshair/backend/pkg/logger"
)

const migrationsSource = "file://migrations"

func main() {
	log := logger.New(logger.INFO)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}
	if cfg.Database.DSN == "" {
		log.Fatalw("DATABASE_DSN is required")
	}

	m, err := migrate.New(migrationsSource, migrateURL(cfg.Database.DSN))
	if err != nil {
		log.Fatalw("Failed to initialize migrations", "error", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Errorw("Failed to close migration resources", "sourceError", sourceErr, "dbError", dbErr)
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Infow("No changes, database is up to date")
		case err != nil:
			log.Fatalw("Failed to apply migrations", "error", err)
		default:
			log.Infow("Migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalw("Failed to roll back the last migration", "error", err)
		}
		log.Infow("Last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatalw("goto needs a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalw("Invalid version number", "error", err)
		}
		if err := m.Migrate(uint(version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalw("Failed to migrate", "version", version, "error", err)
		}
		log.Infow("Database at version", "version", version)

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Infow("No migrations applied yet")
		case err != nil:
			log.Fatalw("Failed to read migration version", "error", err)
		default:
			log.Infow("Current migration version", "version", version, "dirty", dirty)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

// migrateURL rewrites a postgres DSN to the scheme the pgx/v5 driver registers.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - print the current version")
}
