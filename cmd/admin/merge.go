package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jumpyouth/checkin/internal/app/models/dto"
)

var mergeAdmCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a duplicate participant into another",
	Long: `Fold the loser's attendance into the winner and delete the loser.

When both have a record for the same day with different presence, the
winner's value is kept. Participants with different birth dates are refused
unless --allow-different-birth-date is given. Use --dry-run to compute the
report without writing.`,
	RunE: runMergeAdm,
}

var (
	mergeWinner        int64
	mergeLoser         int64
	mergeYear          int
	mergeAllowBirthday bool
	mergeDryRun        bool
	mergeReportPath    string
)

func init() {
	rootAdmCmd.AddCommand(mergeAdmCmd)

	mergeAdmCmd.Flags().Int64Var(&mergeWinner, "winner", 0, "Participant ID to keep")
	mergeAdmCmd.Flags().Int64Var(&mergeLoser, "loser", 0, "Participant ID to remove")
	mergeAdmCmd.Flags().IntVar(&mergeYear, "year", 0, "Enrollment year (defaults to the current year)")
	mergeAdmCmd.Flags().BoolVar(&mergeAllowBirthday, "allow-different-birth-date", false, "Merge even when birth dates differ")
	mergeAdmCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Compute the report without writing")
	mergeAdmCmd.Flags().StringVar(&mergeReportPath, "report", "", "Write JSON report to path")
	_ = mergeAdmCmd.MarkFlagRequired("winner")
	_ = mergeAdmCmd.MarkFlagRequired("loser")
}

func runMergeAdm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	deps, err := env.services(cmd.Context())
	if err != nil {
		return err
	}

	year := mergeYear
	if year == 0 {
		year = env.cfg.App.CurrentYear
	}

	report, err := deps.DuplicateService.Merge(cmd.Context(), year, 0, dto.MergeRequest{
		WinnerID:                mergeWinner,
		LoserID:                 mergeLoser,
		AllowDifferentBirthDate: mergeAllowBirthday,
		DryRun:                  mergeDryRun,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	if mergeReportPath != "" {
		f, err := os.Create(mergeReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		if err := writeJSON(f, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return writeJSON(cmd.OutOrStdout(), report)
}
