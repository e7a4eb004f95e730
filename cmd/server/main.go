package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/bazaar/internal"
	"github.com/DukeRupert/bazaar/internal/cache"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/handler"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/middleware"
	"github.com/DukeRupert/bazaar/internal/service"
	"github.com/DukeRupert/bazaar/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize store
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Tier cache (optional)
	var tierCache service.TierCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewTierCache(ctx, cfg.RedisAddr, cfg.TierCacheTTL)
		if err != nil {
			return fmt.Errorf("tier cache initialization failed: %w", err)
		}
		defer c.Close()
		tierCache = c
		logger.Info("Tier cache ready", "addr", cfg.RedisAddr, "ttl", cfg.TierCacheTTL)
	}

	// Event publisher
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("Publishing inventory events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		publisher = events.NewLogPublisher(logger)
	}
	defer publisher.Close()

	// Initialize services
	catalogService := service.NewCatalogService(st, tierCache, logger)
	defaultTier, err := catalogService.Get(ctx, cfg.DefaultTier)
	if err != nil {
		return fmt.Errorf("default tier %q unavailable: %w", cfg.DefaultTier, err)
	}
	if !defaultTier.IsActive {
		return fmt.Errorf("default tier %q is inactive", cfg.DefaultTier)
	}
	accountService := service.NewAccountService(st, catalogService, cfg.DefaultTier, logger)
	quotaService := service.NewQuotaService(st, catalogService, logger)
	shopService, err := service.NewShopService(st, quotaService, publisher, logger)
	if err != nil {
		return fmt.Errorf("shop service initialization failed: %w", err)
	}
	shelfService := service.NewShelfService(st, quotaService, publisher, logger)
	itemService := service.NewItemService(st, quotaService, publisher, logger)
	reconcileService := service.NewReconcileService(st, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	identityMw := middleware.NewIdentityMiddleware(accountService, cfg.AdminSubjects, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Close()
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, logger)

	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("Metrics endpoint is unprotected; set METRICS_USERNAME and METRICS_PASSWORD")
	}

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(catalogService, accountService, quotaService, logger)
	inventoryHandler := handler.NewInventoryHandler(shopService, shelfService, itemService, reconcileService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// API routes
	accountHandler.RegisterRoutes(mux, identityMw.RequireActor, identityMw.RequireAdmin)
	inventoryHandler.RegisterRoutes(mux, identityMw.RequireActor, identityMw.RequireAdmin)

	// Unmatched API paths get a JSON 404 instead of the mux's plain text.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, logger)
	})

	// metrics.Middleware sits right above the mux so it sees the matched pattern.
	root := middleware.Stack(
		loggingMw.Handler,
		securityMw.Handler,
		rateLimitMw.Handler,
		identityMw.WithActor,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Stop on interrupt or SIGTERM
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// openStore connects the configured backend. Postgres is migrated on start;
// the memory store is seeded with the default tier catalog.
func openStore(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == internal.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemory(store.DefaultTiers()...), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	version, err := internal.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready", "schema_version", version)

	return store.NewPostgres(db), func() { db.Close() }, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
