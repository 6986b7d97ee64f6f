package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/api/handler"
	"github.com/infoamous-source/kiosk-sub001/internal/api/router"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/job"
	"github.com/infoamous-source/kiosk-sub001/internal/kiosk"
	"github.com/infoamous-source/kiosk-sub001/internal/repository"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/database"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	applogger "github.com/infoamous-source/kiosk-sub001/pkg/logger"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
	"github.com/infoamous-source/kiosk-sub001/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("KKAKDUGI_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("offline", cfg.Backend.Offline()),
	)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	// 3. redis, optional: without it visibility falls back to the table and
	// token revocation and rate limiting are off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without key-value store", zap.Error(err))
		rdb = nil
	}

	// 4. backend
	m := metrics.New()
	jwtMgr := jwt.NewManager(signingKey(cfg, logger), &cfg.Auth)
	var (
		db     *gorm.DB
		client *backend.Client
	)
	if cfg.Backend.Offline() {
		client = backend.NewOffline(logger)
	} else {
		db, err = database.NewDB(cfg.Backend.URL, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			sqlDB, err := db.DB()
			if err != nil {
				logger.Fatal("get sql.DB", zap.Error(err))
			}
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				logger.Fatal("database migration failed", zap.Error(err))
			}
		}

		tables := repository.NewRepository(db)
		var blacklist backend.TokenBlacklist
		if rdb != nil {
			blacklist = rdb
		}
		auth := backend.NewAuthProvider(tables.AuthUser, jwtMgr, blacklist, cfg.Auth.MinPasswordLength, logger)
		client = backend.New(tables, auth, logger)
	}

	// 5. services and handlers
	var kv service.KeyValueStore
	if rdb != nil {
		kv = rdb
	}
	svc := service.NewService(cfg, client, kv, m, logger)
	kiosks := kiosk.NewStore(&cfg.Kiosk, m, logger)
	h := handler.NewHandler(svc, kiosks)

	scheduler, err := job.NewScheduler(&cfg.Jobs, svc.Activity, logger)
	if err != nil {
		logger.Fatal("init scheduler", zap.Error(err))
	}
	if client.Configured() {
		scheduler.Start()
	}

	engine := router.Setup(cfg, h, router.Deps{JWT: jwtMgr, Redis: rdb, Metrics: m, Backend: client}, logger)

	// 6. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if client.Configured() {
		scheduler.Stop(ctx)
	}
	svc.Close()
	client.Close()

	if db != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("stopped")
}

// signingKey is the backend key, or a per-process random secret when offline
// so that no token signed with an empty key is ever accepted.
func signingKey(cfg *config.Config, logger *zap.Logger) string {
	if !cfg.Backend.Offline() {
		return cfg.Backend.Key
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Fatal("generate signing key", zap.Error(err))
	}
	return hex.EncodeToString(buf)
}
