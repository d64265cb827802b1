/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the assessment engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env and environment)
  2. Initialize the zap logger
  3. Load program years (embedded defaults, then PROGRAM_YEAR_DIR)
  4. Initialize SQLite store
  5. Connect the Redis result cache when REDIS_ADDR is set
  6. Create service, handler and router
  7. Start the program year reloader
  8. Start server with graceful shutdown

ENVIRONMENT:
  ENV                           development | production (default: development)
  PORT                          HTTP server port (default: 8080)
  DB_PATH                       SQLite database path (default: ./assessments.db)
                                Use ":memory:" for in-memory database
  PROGRAM_YEAR_DIR              Extra program year documents (default: none)
  PROGRAM_YEAR_RELOAD_INTERVAL  Reload check interval, 0 disables (default: 1m)
  REDIS_ADDR                    Result cache address (default: none, cache off)
  CACHE_TTL                     Result cache TTL (default: 15m)
  ALLOWED_ORIGINS               Comma separated CORS origins (default: *)
  LOG_LEVEL, LOG_FORMAT         Logger settings (default: info, json)
  SHUTDOWN_TIMEOUT              Graceful shutdown timeout (default: 10s)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the program year reloader
  2. Stop accepting new connections
  3. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  4. Close Redis and database connections
  5. Exit

SEE ALSO:
  - config/config.go: Settings
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/api"
	"github.com/studentaid/assessment-engine/cache"
	"github.com/studentaid/assessment-engine/config"
	"github.com/studentaid/assessment-engine/factory"
	"github.com/studentaid/assessment-engine/logger"
	"github.com/studentaid/assessment-engine/metrics"
	"github.com/studentaid/assessment-engine/service"
	"github.com/studentaid/assessment-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	// Program years
	programYears := factory.NewProgramYearFactory()
	registry, err := programYears.Load(cfg.ProgramYear.Dir)
	if err != nil {
		logr.Fatal("failed to load program years", zap.String("dir", cfg.ProgramYear.Dir), zap.Error(err))
	}
	logr.Info("program years loaded", zap.Strings("program_years", registry.Names()))

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logr.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	m := metrics.New()
	opts := []service.Option{service.WithMetrics(m), service.WithLogger(logr)}

	// Result cache is optional; the engine runs without it.
	var results *cache.ResultCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without result cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			results = cache.NewResultCache(client, cfg.Redis.CacheTTL, logr)
			opts = append(opts, service.WithCache(results))
		}
	}
	flush := func(ctx context.Context) error {
		if results == nil {
			return nil
		}
		return results.Flush(ctx)
	}

	svc := service.NewAssessmentService(registry, store, opts...)

	handler := api.NewHandler(svc, registry, logr)
	handler.Records = store
	handler.OnReset = flush

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        m,
		EnableReset:    cfg.Env == config.EnvDevelopment,
	})

	reloader := factory.NewReloader(programYears, registry, cfg.ProgramYear.Dir, logr)
	reloader.CheckInterval = cfg.ProgramYear.ReloadInterval
	reloader.OnReload = flush
	reloader.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	reloader.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logr.Info("server stopped")
}
