// Command seed creates the admin account and, optionally, the sample catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"bijouterie/internal/config"
	"bijouterie/internal/database"
	"bijouterie/internal/logging"
	"bijouterie/internal/repository"
	"bijouterie/internal/seed"
)

func main() {
	force := flag.Bool("force", false, "reset the admin password and first-login flag if the account exists")
	catalog := flag.Bool("catalog", false, "replace collections and products with the sample catalog")
	flag.Parse()

	config.Load()
	slog.SetDefault(logging.New(config.AppEnv.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, config.AppEnv, *force, *catalog); err != nil {
		slog.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, force, catalog bool) error {
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(context.Background()); err != nil {
			slog.Warn("disconnect failed", "err", err)
		}
	}()

	result, err := seed.Admin(ctx, store.Users, cfg.AdminEmail, cfg.AdminPassword, force)
	if err != nil {
		return err
	}
	slog.Info("admin account", "email", cfg.AdminEmail, "result", string(result))

	if catalog {
		if _, _, err := seed.Catalog(ctx, store); err != nil {
			return err
		}
	}
	return nil
}
