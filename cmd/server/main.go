package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"fleet-routing-service/internal/adapters/cache"
	"fleet-routing-service/internal/adapters/osrm"
	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/api"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/matrix"
	"fleet-routing-service/internal/platform/db"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, OSRM) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	obs.RegisterMetrics()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	cfg, err := config.LoadSolver(config.Get("SOLVER_CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	osrmURL := config.Get("OSRM_BASE_URL", "https://router.project-osrm.org")
	osrmRPS := config.GetInt("OSRM_RPS", 5)
	provider, err := osrm.NewProvider(osrmURL, float64(osrmRPS))
	if err != nil {
		log.Fatal(err)
	}

	// Redis is optional: without it every lookup falls through to SQL.
	var pairCache ports.PairCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable, running without pair cache: %v", err)
		} else {
			ttl := time.Duration(config.GetInt("MATRIX_CACHE_TTL_HOURS", 24)) * time.Hour
			pairCache = cache.NewRedisPairCache(client, ttl)
		}
		cancel()
	}

	locations := repositories.NewSQLLocationRepository(sqlDB)
	fleet := repositories.NewSQLFleetRepository(sqlDB)
	orders := repositories.NewSQLOrderRepository(sqlDB)
	jobs := repositories.NewSQLJobRepository(sqlDB)
	store := repositories.NewSQLMatrixStore(sqlDB)

	matrixMgr := matrix.NewManager(store, pairCache, locations, provider, cfg.MatrixWorkers)
	svc := services.NewService(locations, fleet, orders, fleet, jobs, matrixMgr, cfg)
	router := api.NewRouter(svc, matrixMgr)

	// Write timeout leaves headroom over the solver's wall-clock limit.
	port := config.Get("PORT", "8080")
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2*cfg.TimeLimit() + 60*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
