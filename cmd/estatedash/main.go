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

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/config"
	dbRedis "github.com/kailas-cloud/estatedash/internal/db/redis"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
	logpkg "github.com/kailas-cloud/estatedash/internal/logger"
	"github.com/kailas-cloud/estatedash/internal/metrics"
	documentrepo "github.com/kailas-cloud/estatedash/internal/repository/document"
	"github.com/kailas-cloud/estatedash/internal/repository/fetchcache"
	"github.com/kailas-cloud/estatedash/internal/telemetry"
	chiTransport "github.com/kailas-cloud/estatedash/internal/transport/chi"
	"github.com/kailas-cloud/estatedash/internal/transport/enquiry"
	openaiAsst "github.com/kailas-cloud/estatedash/internal/transport/openai"
	accountuc "github.com/kailas-cloud/estatedash/internal/usecase/account"
	assistantuc "github.com/kailas-cloud/estatedash/internal/usecase/assistant"
	dashboarduc "github.com/kailas-cloud/estatedash/internal/usecase/dashboard"
	fetchuc "github.com/kailas-cloud/estatedash/internal/usecase/fetch"
	healthuc "github.com/kailas-cloud/estatedash/internal/usecase/health"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
	shortlistuc "github.com/kailas-cloud/estatedash/internal/usecase/shortlist"
	"github.com/kailas-cloud/estatedash/internal/version"
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

	logger.Info("Starting estatedash API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("assistant", cfg.Assistant.Provider),
	)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version.Version,
		SampleRatio: cfg.Telemetry.SampleRatio,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Register dashboard metrics explicitly (no init())
	metrics.RegisterDashboardMetrics()

	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix).WithLogger(logger)
	if cfg.Database.EnsureIndexes {
		if err := docRepo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("Failed to create search indexes", zap.Error(err))
		}
	}

	reader := fetchcache.NewReader(docRepo, cfg.Cache.MaxEntries, cfg.Cache.TTL(), metrics.FetchCacheTotal)
	fetcher := fetchuc.New(reader, docRepo, logger).
		WithWorkers(cfg.Fetch.Workers).
		WithTimeout(cfg.Fetch.Timeout()).
		WithExtractionCache(fetchuc.NewExtractionCache(cfg.Cache.MaxEntries, cfg.Cache.TTL(), metrics.FetchCacheTotal)).
		WithMetrics(metrics.FetchRequestsTotal, metrics.FetchBatchDuration)

	shortlistSvc := shortlistuc.New(docRepo, fetcher, logger)
	accountSvc := accountuc.New(docRepo, logger)
	dashboardSvc := dashboarduc.New(shortlistSvc, accountSvc, logger)

	sessions := session.NewManager(cfg.Sessions.MaxSessions, cfg.Sessions.TTL()).
		WithImageCapacity(cfg.Images.MaxProperties).
		WithMetrics(metrics.ImageDecodeTotal).
		WithLogger(logger)

	var assistantSvc *assistantuc.Service
	var assistantCheck healthuc.AssistantChecker
	if backend, checker := buildAssistant(cfg.Assistant, logger); backend != nil {
		assistantSvc = assistantuc.New(backend, dashboardSvc, cfg.Assistant.Provider, logger).
			WithMetrics(metrics.AssistantRequestsTotal, metrics.AssistantRequestDuration)
		assistantCheck = checker
	}

	healthSvc := healthuc.New(store, assistantCheck, reader)

	// Pass nil interface (not typed nil pointer!) when the assistant is off.
	var asst chiTransport.Assistant
	if assistantSvc != nil {
		asst = assistantSvc
	}
	server := chiTransport.NewServer(accountSvc, sessions, dashboardSvc, asst, healthSvc, logger).
		WithAPIKeys(cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildAssistant picks the backend for the configured provider. Both return
// values are nil when the assistant is disabled; the checker is nil for
// backends without a health probe.
func buildAssistant(cfg config.AssistantConfig, logger *zap.Logger) (domast.Backend, healthuc.AssistantChecker) {
	switch cfg.Provider {
	case config.AssistantOpenAI:
		a := openaiAsst.NewAssistant(&openaiAsst.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout(),
			Logger:      logger,
		})
		return a, a
	case config.AssistantHTTP:
		return enquiry.New(enquiry.Config{
			DraftURL: cfg.DraftURL,
			ChatURL:  cfg.ChatURL,
			Timeout:  cfg.Timeout(),
			Logger:   logger,
		}), nil
	default:
		return nil, nil
	}
}
