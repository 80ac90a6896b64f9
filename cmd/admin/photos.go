package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupPhotosAdmCmd = &cobra.Command{
	Use:   "cleanup-photos",
	Short: "Clear photo references whose files are gone",
	Long: `Check every participant photo against the configured storage and clear
the reference when the file no longer exists. Use --dry-run to only report.`,
	RunE: runCleanupPhotosAdm,
}

var cleanupDryRun bool

func init() {
	rootAdmCmd.AddCommand(cleanupPhotosAdmCmd)

	cleanupPhotosAdmCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Report without clearing")
}

func runCleanupPhotosAdm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	deps, err := env.services(cmd.Context())
	if err != nil {
		return err
	}

	report, err := deps.ParticipantService.CleanupOrphanedPhotos(cmd.Context(), cleanupDryRun)
	if err != nil {
		return fmt.Errorf("photo cleanup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "checked: %d\norphaned: %d\ncleared: %d\n", report.Checked, report.Orphaned, report.Cleared)
	if report.DryRun && report.Orphaned > 0 {
		fmt.Fprintln(out, "dry run, nothing was changed")
	}
	return nil
}
