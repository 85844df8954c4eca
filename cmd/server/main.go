package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"smart-route-planner/internal/adapters/cache"
	"smart-route-planner/internal/adapters/repositories"
	"smart-route-planner/internal/api"
	"smart-route-planner/internal/config"
	"smart-route-planner/internal/metrics"
	"smart-route-planner/internal/platform/db"
	"smart-route-planner/internal/ports"
	"smart-route-planner/internal/services"
)

// main is the application composition root.
// It wires the optional Postgres store and Redis cache behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	metrics.RegisterDefault()

	ctx := context.Background()

	var repo ports.StopRepository
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultPoolConfig())
		if err != nil {
			return err
		}
		defer closeDB(conn)

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
		repo = repositories.NewPostgresStopRepository(conn)
		log.Println("stop storage enabled (postgres)")
	} else {
		log.Println("DATABASE_URL not set; stored batch endpoints disabled")
	}

	var resultCache ports.ResultCache
	if cfg.RedisURL != "" && cfg.CacheTTL > 0 {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		resultCache = cache.NewRedisResultCache(rdb, cfg.CacheTTL)
		log.Printf("result cache enabled (redis) ttl=%s", cfg.CacheTTL)
	}

	var limiter *rate.Limiter
	if cfg.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	}

	planner := services.NewPlanner(cfg.Workers, resultCache, repo)
	planner.MaxStops = cfg.MaxPoints

	router := api.NewRouter(api.Deps{
		Planner:  planner,
		Defaults: cfg.Optimizer,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s mode=%s algorithm=%s dp_limit=%d",
			cfg.Port, cfg.Optimizer.Mode, cfg.Optimizer.Algorithm, cfg.Optimizer.DPLimit)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal %v, starting graceful shutdown", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
}
