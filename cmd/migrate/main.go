package main

// Run database migrations:
//   go run ./cmd/migrate            apply pending migrations
//   go run ./cmd/migrate -status    print migration status
//   go run ./cmd/migrate -down      roll back the latest migration

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"resume-parser/internal/shared/config"
	"resume-parser/internal/shared/storage/db"
)

func main() {
	status := flag.Bool("status", false, "print migration status")
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	// Only database settings matter here; other missing values are tolerated.
	cfg, _ := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseServiceKey, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch {
	case *status:
		err = db.MigrationStatus(ctx, sqlDB)
	case *down:
		err = db.RollbackMigration(ctx, sqlDB)
	default:
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		log.Printf("migration failed: %v", err)
		os.Exit(1)
	}
}
