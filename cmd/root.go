package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agroinnova-backend/config"
	"agroinnova-backend/database"
	"agroinnova-backend/internal/logger"
)

// Version is set at build time with -ldflags
var Version = "dev"

// app carries what every subcommand needs
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newApp() (*app, error) {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(logger.ConfigForEnvironment(cfg.Environment, cfg.LogLevel)).
		With(zap.String("service", "agroinnova-backend"), zap.String("version", Version))
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) openDB() (*sqlx.DB, error) {
	db, err := database.Initialize(a.cfg.DatabaseURL, a.log.Named("database"))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewRootCommand builds the CLI. Running it without a subcommand serves the API.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "agroinnova",
		Short:         "AgroInnova platform API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCommand()
	root.RunE = serve.RunE

	root.AddCommand(serve, newMigrateCommand(), newSeedCommand(), newCreateAdminCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
