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

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/api/handler"
	"github.com/chibuike2003/palgunn/internal/api/router"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/clock"
	"github.com/chibuike2003/palgunn/pkg/database"
	"github.com/chibuike2003/palgunn/pkg/jwt"
	applogger "github.com/chibuike2003/palgunn/pkg/logger"
	"github.com/chibuike2003/palgunn/pkg/redis"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("PORTAL_CONFIG"))
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
		zap.String("timezone", cfg.Results.Timezone),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. Redis is optional: without it logout revocation and login rate
	// limiting are disabled.
	deps := router.Deps{Logger: logger}
	var blacklist service.TokenBlacklist
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	} else {
		blacklist = rdb
		deps.Blacklist = rdb
		deps.Limiter = rdb
	}

	// 5. clock in the portal zone
	loc, err := clock.LoadLocation(cfg.Results.Timezone)
	if err != nil {
		logger.Fatal("load timezone", zap.String("timezone", cfg.Results.Timezone), zap.Error(err))
	}
	clk := clock.New(loc)

	// 6. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	deps.JWT = jwtMgr

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, clk, logger)
	h := handler.NewHandler(svc, cfg.Results.ImportMaxBytes)

	engine := router.Setup(cfg, h, deps)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
