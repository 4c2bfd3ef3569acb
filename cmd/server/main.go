package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/mobiledna-go/internal/api"
	"github.com/jengzang/mobiledna-go/internal/config"
	"github.com/jengzang/mobiledna-go/internal/database"
	"github.com/jengzang/mobiledna-go/internal/logging"
	"github.com/jengzang/mobiledna-go/internal/middleware"
	"github.com/jengzang/mobiledna-go/internal/repository"
	"github.com/jengzang/mobiledna-go/internal/service"

	// Import analyzer packages to register them
	_ "github.com/jengzang/mobiledna-go/internal/analysis/features"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New(logging.Config{Level: "info", Format: "console"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.Database.Path}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, log).RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	metaRepo := repository.NewAppMetaRepository(db)
	apps := service.NewAppMetaService(metaRepo, log)
	if path := cfg.Data.AppMetaPath; path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			n, err := apps.Import(ctx, path)
			if err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("failed to import app metadata")
			}
			log.Info().Int("apps", n).Str("path", path).Msg("imported app metadata")
		}
	}

	features := service.NewFeatureService(repository.NewFeatureRepository(db), metaRepo, cfg, log)
	tasks := service.NewAnalysisTaskService(repository.NewAnalysisTaskRepository(db), features, log)

	tokens, err := middleware.NewTokenManager(cfg.Server.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize authentication")
	}

	// 初始化路由
	router := api.SetupRouter(
		api.Services{Tasks: tasks, Features: features, Apps: apps},
		api.Options{
			Logger:  log,
			Tokens:  tokens,
			Limiter: middleware.NewRateLimiter(ctx, cfg.Server.RateLimit, cfg.Server.RateLimitWindow),
		},
	)

	srv := &http.Server{Addr: cfg.Server.Port, Handler: router}
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	tasks.Wait()

	// persist edits made through the API back to the cache file
	if path := cfg.Data.AppMetaPath; path != "" {
		if err := apps.Export(context.Background(), path); err != nil {
			log.Error().Err(err).Msg("failed to export app metadata")
		}
	}
}
