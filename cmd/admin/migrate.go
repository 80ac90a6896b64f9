package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appMigrations "github.com/jumpyouth/checkin/internal/app/migrations"
	"github.com/jumpyouth/checkin/internal/bootstrap"
)

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE:  runMigrateAdm,
}

var migrateStatus bool

func init() {
	rootAdmCmd.AddCommand(migrateAdmCmd)

	migrateAdmCmd.Flags().BoolVar(&migrateStatus, "status", false, "List applied migrations instead of applying")
}

func runMigrateAdm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	if migrateStatus {
		applied, err := appMigrations.NewMigrator(env.pool).Applied(ctx)
		if err != nil {
			return fmt.Errorf("failed to list migrations: %w", err)
		}
		for _, m := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	return bootstrap.RunMigrations(ctx, env.cfg, env.pool, env.logger)
}
