package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/commons"
	"storefront/internal/config"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/schema"
	"storefront/internal/infrastructure/sqlite"
	"storefront/internal/infrastructure/tracing"
	"storefront/internal/order"
	"storefront/internal/payment"
	"storefront/internal/product"
	productrepo "storefront/internal/product/repository"
	"storefront/internal/server"
)

const serviceName = "storefront"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			db, err := openDatabase(cmd.Context(), cfg, zapLogger)
			if err != nil {
				return err
			}
			defer db.Close()

			zapLogger.Info("schema applied", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the initial catalog from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			catalog, err := commons.LoadCatalog(file)
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg, zapLogger)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := product.NewSeeder(db, zapLogger).Seed(cmd.Context(), catalog)
			if err != nil {
				return fmt.Errorf("seeding catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d formats and %d products, %d already present\n",
				result.Formats, result.Products, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "config/catalog.yaml", "catalog YAML file")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, zapLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			zapLogger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := openDatabase(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	productCtrl := product.NewModule(db, zapLogger)
	orderCtrl, err := order.NewModule(db, cfg, zapLogger, productrepo.NewSQLProductRepository(db))
	if err != nil {
		return err
	}
	paymentCtrl := payment.NewModule(db, cfg, zapLogger)

	router := server.NewRouter(productCtrl, orderCtrl, paymentCtrl, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
		zapLogger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	zapLogger.Info("server stopped gracefully")
	return nil
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	return cfg, zapLogger, nil
}

// openDatabase connects with the configured driver and applies the schema.
func openDatabase(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err = sqlite.NewConnection(cfg.Database.SQLitePath)
	default:
		db, err = mysql.NewConnection(cfg.Database)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := schema.Apply(ctx, db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return db, nil
}
