// Command directory-migrate connects to MongoDB, creates the subscription
// indexes and checks connectivity.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/directory"
	audithook "github.com/xraph/directory/audit_hook"
	"github.com/xraph/directory/config"
	"github.com/xraph/directory/observability"
	mongostore "github.com/xraph/directory/store/mongo"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env", "", "path to a .env file (default: ./.env if present)")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	if err := run(*configPath, *envFile, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "directory-migrate:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, timeout time.Duration) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := mongostore.Open(ctx, cfg.Mongo, cfg.Database)
	if err != nil {
		return err
	}
	store := mongostore.New(db, mongostore.WithCollection(cfg.Collection))

	opts := []directory.Option{
		directory.WithLogger(logger),
		directory.WithPlugin(observability.NewMetricsExtension(
			observability.NewPrometheusFactory(prometheus.NewRegistry(), cfg.MetricsNamespace),
		)),
	}
	if cfg.AuditEnabled {
		opts = append(opts, directory.WithPlugin(audithook.New(audithook.LogRecorder(logger), audithook.WithLogger(logger))))
	}
	if cfg.DisableMigrate {
		opts = append(opts, directory.WithoutMigrate())
	}

	d := directory.New(store, opts...)
	defer func() {
		if err := d.Stop(); err != nil {
			logger.Warn("directory-migrate: close store", "error", err)
		}
	}()

	if err := d.Start(ctx); err != nil {
		return err
	}
	if err := d.Health(ctx); err != nil {
		return err
	}

	logger.Info("directory ready",
		slog.String("database", cfg.Database),
		slog.String("collection", store.CollectionName()),
		slog.Bool("migrated", !cfg.DisableMigrate),
	)
	return nil
}
