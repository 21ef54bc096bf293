package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"contractview/internal/app"
	"contractview/internal/artifact"
	"contractview/internal/config"
	"contractview/internal/gitrepo"
	"contractview/internal/library"
	"contractview/internal/logging"
	"contractview/internal/search"
	"contractview/internal/session"
	"contractview/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	applied, err := store.ApplyPendingMigrations(ctx, db, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	for _, version := range applied {
		logger.Info("migration applied", zap.String("version", version))
	}

	if err := os.MkdirAll(cfg.ReposDir, 0o755); err != nil {
		logger.Fatal("failed to create repos dir", zap.Error(err))
	}

	dataStore := store.NewPostgresStore(db)
	gitService := gitrepo.New(cfg.ReposDir)
	lib := library.New(cfg.ContractsDir)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts, logger)

	var service *app.Service
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisStore.Close()
		service = app.New(cfg, lib, dataStore, gitService, redisStore, searchService, logger)
	} else {
		logger.Warn("REDIS_URL not set, mention sessions disabled")
		service = app.New(cfg, lib, dataStore, gitService, nil, searchService, logger)
	}

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		artifacts, err := artifact.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			logger.Fatal("object storage setup failed", zap.Error(err))
		}
		if err := artifacts.EnsureBucket(ctx); err != nil {
			logger.Warn("object storage unavailable", zap.String("bucket", cfg.MinioBucket), zap.Error(err))
		} else {
			service.WithArtifacts(artifacts)
		}
	}

	results, err := service.ImportAll(ctx, "bootstrap")
	if err != nil {
		logger.Warn("initial import failed", zap.String("dir", cfg.ContractsDir), zap.Error(err))
	}
	logger.Info("initial import done", zap.Int("contracts", len(results)))
	go searchService.ReindexAllFromPG(ctx)

	if cfg.Watch {
		go func() {
			if err := service.WatchLibrary(ctx); err != nil {
				logger.Error("contract watcher stopped", zap.Error(err))
			}
		}()
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("contractview API listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
