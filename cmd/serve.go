package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hireready/backend/repository"
	"github.com/hireready/backend/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// openStore returns the Postgres-backed store, or the in-memory store when no
// database URL is configured.
func openStore(cfg services.DatabaseConfig, migrate bool) (services.Store, *gorm.DB, error) {
	if cfg.URL == "" {
		slog.Warn("Database URL not configured, using in-memory store")
		return repository.NewMemoryRepository(), nil, nil
	}

	db, err := repository.Open(cfg.URL, repository.DatabaseOptions{
		LogLevel:     cfg.LogLevel,
		MaxIdleConns: cfg.MaxIdleConns,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewGORMRepository(db)
	if migrate {
		if err := repo.AutoMigrate(); err != nil {
			return nil, nil, err
		}
		slog.Info("Database migrated")
	}
	slog.Info("Connected to database")
	return repo, db, nil
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config := services.LoadConfig(cfgFile)
	closer := setupLogging(config.Log)
	defer closer.Close()

	if config.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	store, db, err := openStore(config.Database, true)
	if err != nil {
		return err
	}

	gateway := services.NewGateway(ctx, config.AI)
	slog.Info("AI gateway ready", "providers", gateway.Providers())

	server := services.NewServer(config, store, db, gateway)
	server.Start()
	return nil
}
