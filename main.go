package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/auth"
	"bijouterie/internal/checkout"
	"bijouterie/internal/config"
	"bijouterie/internal/database"
	"bijouterie/internal/idempotency"
	"bijouterie/internal/logging"
	"bijouterie/internal/repository"
	"bijouterie/internal/server"
	"bijouterie/internal/shutdown"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := database.Disconnect(closeCtx); err != nil {
			log.Warn("mongo disconnect failed", "err", err)
		}
	}()

	var seen idempotency.Seener
	if cfg.RedisURL != "" {
		rdb, err := idempotency.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, idempotency disabled", "err", err)
		} else {
			defer rdb.Close()
			seen = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
			log.Info("idempotency enabled", "ttl", cfg.IdempotencyTTL)
		}
	}

	router, err := server.NewRouter(server.Deps{
		Config:      cfg,
		Store:       store,
		Checkout:    checkout.NewService(store, checkout.TotalPolicy(cfg.OrderTotalPolicy)),
		Issuer:      auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL),
		Idempotency: seen,
		Logger:      log,
	})
	if err != nil {
		log.Error("router init failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", srv.Addr, "store", store.Driver,
			"totalPolicy", cfg.OrderTotalPolicy, "statusPolicy", cfg.OrderStatusPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
