package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
	"github.com/JonMunkholm/csvpreview/internal/store"
	"github.com/JonMunkholm/csvpreview/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Setup structured logging based on config
	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, items, closer, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	service := core.NewService(writer, cfg)
	server := web.NewServer(service, items, cfg)

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active full previews and imports (with timeout)
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for ingestions to complete", "active", status.Active)
			if err := service.WaitForIngestions(shutdownCtx); err != nil {
				slog.Warn("ingestions did not complete in time", "error", err)
			} else {
				slog.Info("all ingestions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		return nil
	})

	return eg.Wait()
}

// openStore connects the item store selected by cfg. All results are nil
// for the "none" driver.
func openStore(ctx context.Context, cfg *config.Config) (core.ItemWriter, web.ItemReader, io.Closer, error) {
	switch driver := cfg.StoreDriver(); driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, store.PostgresConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("item store ready", "driver", driver)
		return st, st, st, nil

	case "sqlite":
		st, err := store.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("item store ready", "driver", driver, "path", cfg.Store.SQLitePath)
		return st, st, st, nil

	default:
		slog.Warn("no item store configured, imports are disabled")
		return nil, nil, nil, nil
	}
}
