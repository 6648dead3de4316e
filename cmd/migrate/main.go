package main

import (
	"context"
	"flag"
	"log"
	"os"

	"corptravel/internal/prefs"
	"corptravel/pkg/db"
	"corptravel/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("db", envOr("PREFS_DB_PATH", "data/prefs.db"), "path to the preferences SQLite file")
	flag.Parse()

	zlogger := logger.NewZeroLog(envOr("APP_ENV", "development"))

	// ============
	// Init DB client
	// ============
	client, err := db.OpenSQLite(context.Background(), *path)
	if err != nil {
		log.Fatal(err)
	}

	// =========
	// Migrate
	// =========
	err = client.Migrate(prefs.Migrations, prefs.MigrationsDir)
	_ = client.Close()
	if err != nil {
		zlogger.Error("migration failed", logger.Field{Key: "db", Value: *path}, logger.Err(err))
		os.Exit(1)
	}
	zlogger.Info("migrations applied", logger.Field{Key: "db", Value: *path})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
