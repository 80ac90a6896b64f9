package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jumpyouth/checkin/internal/bootstrap"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/server"
)

// @title Check-in API
// @version 1.0
// @description Attendance, groups and reports for the youth ministry check-in

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization. The same token is accepted from the session cookie.
func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "checkin-api",
		Short:         "Serve the check-in HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.NewServer(configPath)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration file")

	if err := cmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
