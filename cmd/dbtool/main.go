package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/fleet.yaml")
	initAndSeed(sqlDB, seedPath)
}

func initAndSeed(sqlDB *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromYAML(sqlDB, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
