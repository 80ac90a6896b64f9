package services

import (
	"sort"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/repositories"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

// ErrBirthDateMismatch rejects a merge of participants born on different days
var ErrBirthDateMismatch = apperrors.NewCustomError(apperrors.ErrConflict,
	"participants have different birth dates").
	WithStatusMsg("confirm the merge with allowDifferentBirthDate")

// PlanMerge decides what happens to each of the loser's attendance records.
// Where both have a record for the same day the winner's record is kept.
func PlanMerge(state models.MergeState, allowDifferentBirthDate bool) (models.MergePlan, error) {
	var plan models.MergePlan

	if !allowDifferentBirthDate && !sameDay(state.Winner.BirthDate, state.Loser.BirthDate) {
		return plan, ErrBirthDateMismatch
	}

	days := make([]int64, 0, len(state.LoserAttendance))
	for day := range state.LoserAttendance {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	for _, day := range days {
		winnerPresent, held := state.WinnerAttendance[day]
		switch {
		case !held:
			plan.ReassignDays = append(plan.ReassignDays, day)
		case winnerPresent == state.LoserAttendance[day]:
			plan.DuplicateDays = append(plan.DuplicateDays, day)
		default:
			plan.ConflictDays = append(plan.ConflictDays, day)
		}
	}

	if state.Winner.Photo == "" && state.Loser.Photo != "" {
		plan.CopyPhoto = true
		plan.Photo = state.Loser.Photo
	}
	return plan, nil
}

// mergePlanner adapts PlanMerge to the repository callback. Unless dryRun is
// set, both participants must belong to writable years.
func mergePlanner(years YearPolicy, dryRun, allowDifferentBirthDate bool) repositories.MergePlanner {
	return func(state models.MergeState) (models.MergePlan, error) {
		if !dryRun {
			for _, p := range []models.Participant{state.Winner, state.Loser} {
				if err := years.EnsureWritable(p.Year); err != nil {
					return models.MergePlan{}, err
				}
			}
		}
		return PlanMerge(state, allowDifferentBirthDate)
	}
}

func sameDay(a, b time.Time) bool {
	return helpers.DateOnly(a).Equal(helpers.DateOnly(b))
}
