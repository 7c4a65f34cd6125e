package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwtauth "pet-adoption-economy/internal/adapters/auth/jwt"
	"pet-adoption-economy/internal/adapters/storage/file"
	"pet-adoption-economy/internal/adapters/storage/memory"
	"pet-adoption-economy/internal/adapters/storage/postgres"
	"pet-adoption-economy/internal/adapters/storage/records"
	"pet-adoption-economy/internal/adapters/storage/sqlite"
	"pet-adoption-economy/internal/domain/audit"
	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/middleware"
	"pet-adoption-economy/internal/platform/config"
	"pet-adoption-economy/internal/platform/logger"
	"pet-adoption-economy/internal/platform/metrics"
	"pet-adoption-economy/internal/ports/recordstore"
	"pet-adoption-economy/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title Pet Adoption Economy API
// @version 1.0
// @BasePath /
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close store", map[string]any{"err": err})
		}
	}()
	log.Info("store ready", map[string]any{"driver": cfg.StoreDriver})

	if cfg.SeedPets {
		n, err := pets.NewService(records.NewPets(store)).Seed(ctx, pets.StarterShelter())
		if err != nil {
			return fmt.Errorf("seed pets: %w", err)
		}
		if n > 0 {
			log.Info("seeded starter shelter", map[string]any{"pets": n})
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	opts := router.Options{
		Store:         store,
		Logger:        log,
		Metrics:       collector,
		Gatherer:      reg,
		AdminEmails:   cfg.AdminEmails,
		CommitRetries: cfg.CommitRetries,
	}

	if cfg.JWTSecret != "" {
		tokens, err := jwtauth.New(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName)
		if err != nil {
			return fmt.Errorf("jwt: %w", err)
		}
		opts.AuthVerifier = tokens
		opts.TokenIssuer = tokens
	} else {
		log.Warn("JWT_SECRET not set: running in dev mode (X-Debug-User-ID)", nil)
	}

	auditor := audit.NewAsyncRecorder(
		audit.NewService(records.NewAudit(store), log),
		cfg.AuditQueueSize,
		log,
		collector,
	)
	opts.Auditor = auditor

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute:       cfg.RateLimitPerMinute,
		Burst:           cfg.RateLimitPerMinute,
		CleanupInterval: 5 * time.Minute,
	}, log)
	defer limiter.Stop()
	opts.RateLimiter = limiter

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", map[string]any{"err": err})
	}
	// el audit se drena después de cortar requests
	if err := auditor.Close(shutdownCtx); err != nil {
		log.Warn("audit queue not drained", map[string]any{"err": err})
	}
	return nil
}

func openStore(cfg config.Config) (recordstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewStore(), noop, nil

	case config.DriverFile:
		s, err := file.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return s, noop, nil

	case config.DriverPostgres:
		if err := postgres.Migrate(cfg.DBDSN); err != nil {
			return nil, nil, err
		}
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewStore(db), db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStore(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
