package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jumpyouth/checkin/internal/bootstrap"
	"github.com/jumpyouth/checkin/internal/config"
)

var rootAdmCmd = &cobra.Command{
	Use:           "checkin-admin",
	Short:         "Maintenance commands for the check-in database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

func init() {
	rootAdmCmd.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
}

// admEnv is what every subcommand works against
type admEnv struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func (e *admEnv) Close() {
	e.pool.Close()
}

// openEnv loads the configuration and connects to the database. Migrations
// are not applied here.
func openEnv() (*admEnv, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	pool, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &admEnv{cfg: cfg, pool: pool, logger: lgr}, nil
}

func (e *admEnv) services(ctx context.Context) (*bootstrap.Dependencies, error) {
	return bootstrap.BuildServices(ctx, e.cfg, e.pool, e.logger)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
