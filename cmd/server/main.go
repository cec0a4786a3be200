package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"persona/internal/audit"
	"persona/internal/jwttoken"
	"persona/internal/platform/config"
	"persona/internal/platform/httpserver"
	"persona/internal/platform/logger"
	"persona/internal/platform/metrics"
	platformredis "persona/internal/platform/redis"
	"persona/internal/provider"
	"persona/internal/search"
	"persona/internal/store"
	"persona/internal/store/local"
	"persona/internal/store/postgres"
	"persona/internal/submission"
	httptransport "persona/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	// Remote store: only when a database is configured. Without it the
	// service still runs in guest mode against the local document store.
	var (
		remote      store.Store
		accounts    httptransport.AccountEnsurer
		submissions submission.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := postgres.New(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		remote = pg
		accounts = pg
		submissions = submission.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, running without the remote store")
		remote = store.NewUnavailable()
		submissions = submission.NewInMemoryStore()
	}

	localStore, err := local.New(cfg.LocalDataDir)
	if err != nil {
		log.Error("open local store", "error", err)
		os.Exit(1)
	}
	stores := store.NewSelector(remote, localStore)

	// Provider client, optionally fronted by the Redis response cache.
	var fetcher provider.Fetcher = provider.New(
		cfg.ProviderBaseURL, cfg.ProviderKeyName, cfg.ProviderKeyPassword, log)
	cache, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
		fetcher = provider.NewCachedFetcher(fetcher, cache.Client, cfg.ProviderCacheTTL, log, m)
	}

	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	publisher := audit.NewPublisher(sink, log)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Search:      search.NewService(stores, fetcher, publisher, log, m),
		Submissions: submission.NewService(submissions, publisher, log, m),
		Stores:      stores,
		Accounts:    accounts,
		Validator:   jwttoken.NewJWTService(cfg.JWTSigningKey, "persona"),
		Logger:      log,
		Metrics:     m,
	})

	srv := httpserver.New(httpserver.Config{
		Addr:         cfg.Addr,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}, router)

	go func() {
		log.Info("starting persona", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("persona stopped")
}
