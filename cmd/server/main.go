/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the farm ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize SQLite store
  3. Choose the month cache (redis when REDIS_ADDR is set, else in-memory)
  4. Build app lock (and its relock scheduler), payroll calculator and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database
  -static  Frontend build directory (default: web/dist)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close redis and database connections
  4. Exit

EXAMPLES:
  ./server -db="./data/farm.db"
  REDIS_ADDR=localhost:6379 ./server -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/warp/farm-ledger/api"
	"github.com/warp/farm-ledger/applock"
	"github.com/warp/farm-ledger/cache"
	"github.com/warp/farm-ledger/config"
	"github.com/warp/farm-ledger/payroll"
	"github.com/warp/farm-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	staticDir := flag.String("static", "web/dist", "Frontend build directory")
	flag.Parse()

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "farm-ledger"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, *port, *dbPath, *staticDir, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, port int, dbPath, staticDir string, logger *slog.Logger) error {
	// Initialize store
	db, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	metrics := api.NewMetrics()

	var monthCache cache.Cache
	if cfg.Cache.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.Cache.RedisAddr)
		defer client.Close()
		rc := cache.NewRedis(client, cfg.Cache.RedisPrefix, cfg.Cache.TTL)
		if !rc.Healthy(context.Background()) {
			logger.Warn("redis unreachable, reads will fall back to sqlite",
				slog.String("addr", cfg.Cache.RedisAddr))
		}
		monthCache = rc
	} else {
		monthCache = cache.NewMemory(cfg.Cache.TTL)
	}
	store := cache.NewStore(db, monthCache, logger, metrics)

	lock := applock.New(db, cfg.Payroll.BcryptCost)
	calc := payroll.NewCalculator(store,
		payroll.WithConcurrency(cfg.Payroll.FetchConcurrency),
		payroll.WithLogger(logger),
		payroll.WithObserver(metrics),
	)

	relocker := api.NewRelockScheduler(lock, cfg.Lock.IdleTimeout, logger)
	relocker.CheckInterval = cfg.Lock.CheckInterval
	relocker.Start()
	defer relocker.Stop()

	handler := api.NewHandler(store, calc, lock, metrics, logger)
	handler.Resetter = db

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.App.CORSOrigins,
		StaticDir:      staticDir,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", port), slog.String("db", dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
