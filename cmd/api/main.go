package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchant-studio/config"
	"merchant-studio/internal/authoring"
	"merchant-studio/internal/delivery/http/middleware"
	v1 "merchant-studio/internal/delivery/http/v1"
	"merchant-studio/internal/domain"
	"merchant-studio/internal/gateway/catalogapi"
	"merchant-studio/internal/infrastructure/cache"
	"merchant-studio/internal/repository/postgres"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/storage"
	"merchant-studio/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

const serviceName = "merchant-studio"

var version = "dev"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage Module (R2) ---
	r2Storage, err := storage.NewR2Storage(
		ctx,
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}

	// --- Catalog API Gateway ---
	catalog := catalogapi.NewClient(
		cfg.CatalogAPIURL,
		cfg.CatalogAPITimeout,
		catalogapi.WithRateLimit(cfg.CatalogAPIRPS, cfg.CatalogAPIBurst),
		catalogapi.WithObjectStore(r2Storage),
	)

	// --- Draft Store: Postgres when DB_DSN is set, memory otherwise ---
	var store domain.DraftStore
	if cfg.DBUrl != "" {
		pgxPool, err := postgres.NewPgxPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pgxPool.Close()

		draftRepo := postgres.NewDraftRepository(pgxPool)
		if err := draftRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare draft store")
		}
		store = draftRepo
		log.Info().Msg("Drafts are stored in PostgreSQL")
	} else {
		store = cache.NewMemoryDraftStore(cfg.SessionTTL)
		log.Warn().Msg("DB_DSN not set, drafts are kept in memory and lost on restart")
	}

	// Schemas never expire on their own; sessions follow SESSION_TTL.
	schemaCache := cache.NewMemoryCache(-1, time.Hour)
	sessionCache := cache.NewMemoryCache(cfg.SessionTTL, 10*time.Minute)

	// --- Authoring Core ---
	schema := authoring.NewSchemaProvider(catalog, schemaCache)
	media := authoring.NewMediaSlotAllocator(catalog, cfg.UploadConcurrency)
	variants := authoring.NewVariantMatrix(catalog)
	sessions := authoring.NewSessionManager(catalog, catalog, store, sessionCache, cfg.SessionTTL)
	orchestrator := authoring.NewOrchestrator(catalog, schema, media, variants, sessions)

	catalogHandler := v1.NewCatalogHandler(catalog, schema)
	draftHandler := v1.NewDraftHandler(sessions, orchestrator, cfg.MaxUploadSizeMB)

	protect := func(h http.Handler) http.Handler {
		return middleware.AuthMiddleware(middleware.RequireRole("merchant", "admin")(h))
	}

	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, catalogHandler, draftHandler, protect)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(ctx, 50, 100, time.Minute, 3*time.Minute)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, version, cfg.Port)

	<-ctx.Done()
	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.ServiceStop(serviceName)
}
