package main

import (
	"os"

	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

func main() {
	if err := rootAdmCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
