package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"qrate/config"
	"qrate/internal/database"
	logger "github.com/Bparsons0904/goLogger"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	MIGRATION_PATH = "cmd/migration/migrations"
	MIGRATION_DB   = "postgres"
)

func main() {
	log := logger.New("migrations").Function("main")

	config, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to create database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	migrationType := "up"
	if len(os.Args) > 1 {
		migrationType = os.Args[1]
	}

	switch migrationType {
	case "up":
		err = migrateUp(&db, config, log)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				log.Er("failed to parse step", err)
				os.Exit(1)
			}
		}
		err = migrateDown(steps, config, log)
	case "reset":
		err = migrateReset(&db, config, log)
	}

	if err != nil {
		log.Er("failed to run migrations", err)
		os.Exit(1)
	}

	log.Info("Migrations complete")
}

func migrateUp(db *database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("migrateUp")
	log.Info("Running migrations up")

	if err := runMigrations(config, log, migrate.Up); err != nil {
		return log.Err("failed to run file migrations", err)
	}

	if err := db.MigrateModels(); err != nil {
		return log.Err("failed to auto migrate models", err)
	}

	if err := db.CreateIndexes(); err != nil {
		return log.Err("failed to create indexes", err)
	}

	return nil
}

func migrateDown(steps int, config config.Config, log logger.Logger) error {
	log = log.Function("migrateDown")
	log.Info("Running migrations down")

	for range steps {
		if err := runMigrations(config, log, migrate.Down); err != nil {
			return log.Err("failed to run migrations", err)
		}
	}

	return nil
}

// migrateReset drops a development database back to a clean state: all
// tables dropped, caches flushed, then migrated back up.
func migrateReset(db *database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("migrateReset")
	log.Info("Resetting database")

	tables := []string{
		"request_metrics",
		"event_sessions",
		"request_votes",
		"song_requests",
		"request_settings",
		"event_songs",
		"guest_preferences",
		"events",
	}
	for _, table := range tables {
		if err := db.SQL.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return log.Err("failed to drop table", err, "table", table)
		}
	}

	if err := db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush cache databases", err)
	}

	return migrateUp(db, config, log)
}

func runMigrations(
	config config.Config,
	log logger.Logger,
	direction migrate.MigrationDirection,
) error {
	log = log.Function("runMigrations")

	if _, err := os.Stat(MIGRATION_PATH); os.IsNotExist(err) {
		log.Info("Migrations directory does not exist, skipping file-based migrations")
		return nil
	}

	files, err := filepath.Glob(filepath.Join(MIGRATION_PATH, "*.sql"))
	if err != nil {
		return log.Err("failed to list migration files", err)
	}
	if len(files) == 0 {
		log.Info("No migration files found, skipping file-based migrations")
		return nil
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	sqlDB, err := sql.Open(MIGRATION_DB, dsn)
	if err != nil {
		return log.Err("failed to open migration connection", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Er("failed to close migration connection", err)
		}
	}()

	migrations := &migrate.FileMigrationSource{Dir: MIGRATION_PATH}
	applied, err := migrate.Exec(sqlDB, MIGRATION_DB, migrations, direction)
	if err != nil {
		return log.Err("failed to execute migrations", err)
	}

	log.Info("Applied migrations", "count", applied)
	return nil
}
