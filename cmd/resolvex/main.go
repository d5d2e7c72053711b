package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/config"
	dbRedis "github.com/kailas-cloud/resolvex/internal/db/redis"
	"github.com/kailas-cloud/resolvex/internal/domain"
	logpkg "github.com/kailas-cloud/resolvex/internal/logger"
	"github.com/kailas-cloud/resolvex/internal/metrics"
	aliasrepo "github.com/kailas-cloud/resolvex/internal/repository/alias"
	ftsrepo "github.com/kailas-cloud/resolvex/internal/repository/fts"
	itemrepo "github.com/kailas-cloud/resolvex/internal/repository/item"
	"github.com/kailas-cloud/resolvex/internal/repository/vocabcache"
	"github.com/kailas-cloud/resolvex/internal/telemetry"
	chiTransport "github.com/kailas-cloud/resolvex/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/resolvex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/resolvex/internal/usecase/health"
	passageuc "github.com/kailas-cloud/resolvex/internal/usecase/passage"
	resolveuc "github.com/kailas-cloud/resolvex/internal/usecase/resolve"
	vocabuc "github.com/kailas-cloud/resolvex/internal/usecase/vocab"
	"github.com/kailas-cloud/resolvex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting resolvex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	// Create repositories and ensure search indexes
	itemRepo := itemrepo.New(store)
	aliasRepo := aliasrepo.New(store)
	ftsRepo := ftsrepo.New(store)

	if err := itemRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure item index", zap.Error(err))
	}
	if err := aliasRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure alias index", zap.Error(err))
	}

	// Telemetry sink, flushed on shutdown
	sink := telemetry.NewSink(cfg.Telemetry.BufferSize, metrics.TelemetryDroppedTotal, logger)
	defer sink.Close()

	// Create use case services
	resolveSvc := resolveuc.New(
		aliasRepo, ftsRepo, itemRepo, sink,
		thresholdsFromConfig(cfg.Resolver),
		metrics.ResolutionDecisionsTotal,
		metrics.LookupDuration,
		logger,
	)
	passageSvc := passageuc.New(sink, metrics.FilterMethodsTotal)
	vocabBuilder := vocabuc.New(itemRepo, nil)
	vocabSvc := vocabcache.New(
		vocabBuilder, store,
		time.Duration(cfg.Vocab.CacheTTLSec)*time.Second,
		metrics.VocabCacheTotal, logger,
	)
	catalogSvc := cataloguc.New(itemRepo, aliasRepo, vocabSvc, logger)
	healthSvc := healthuc.New(store, store, domain.ItemIndexName, domain.AliasIndexName)

	// Create chi server
	server := chiTransport.NewServer(resolveSvc, passageSvc, catalogSvc, vocabSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func thresholdsFromConfig(rc config.ResolverConfig) resolveuc.Thresholds {
	return resolveuc.Thresholds{
		AliasWeight:      rc.AliasWeight,
		FTSWeight:        rc.FTSWeight,
		SingleMinScore:   rc.SingleMinScore,
		SingleMinGap:     rc.SingleMinGap,
		MultipleMinScore: rc.MultipleMinScore,
		TopK:             rc.TopK,
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
