package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"stockroom/condb"
	"stockroom/config"
	"stockroom/inventory"
	"stockroom/routes"
	"stockroom/session"
	"stockroom/users"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	dir, closeDir, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDir()

	if err := users.SeedDefaults(ctx, dir); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	var tokens session.TokenSource = session.OpaqueTokens{}
	if cfg.Session.TokenFormat == config.TokenFormatJWT {
		tokens = session.SignedTokens{Secret: []byte(cfg.Session.Secret)}
	}
	sessions := session.New(dir,
		session.WithLifetime(cfg.Session.Lifetime),
		session.WithTokenSource(tokens),
		session.WithLogger(logger),
	)
	if cfg.Session.SweepInterval > 0 {
		go sessions.Run(ctx, cfg.Session.SweepInterval)
	}

	store := inventory.NewMemoryStore()
	if cfg.SeedSamples {
		if err := inventory.SeedSamples(ctx, store); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}

	app := routes.New(routes.Deps{
		Sessions:     sessions,
		Inventory:    store,
		Logger:       logger,
		AllowOrigins: cfg.AllowOrigins,
		WebDir:       cfg.WebDir,
		AccessLog:    cfg.AccessLog,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Addr, "token_format", cfg.Session.TokenFormat, "lifetime", cfg.Session.Lifetime)
	return app.Listen(cfg.Addr)
}

// openDirectory picks Postgres when a database URL is configured, memory otherwise.
func openDirectory(ctx context.Context, cfg config.Config, logger *slog.Logger) (users.Directory, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("user directory in memory")
		return users.NewMemoryDirectory(), func() {}, nil
	}

	pool, err := condb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	dir := users.NewPostgresDirectory(pool)
	if err := dir.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("user directory in postgres")
	return dir, pool.Close, nil
}
