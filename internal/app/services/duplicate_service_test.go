package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/repositories"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDuplicates applies merges to the participant and attendance fakes
type fakeDuplicates struct {
	participants *fakeParticipants
	attendance   *fakeAttendance
	rejected     map[[2]int64]*models.RejectedPair
	similar      []models.ScoredPair
	sameName     []models.ScoredPair
	similarErr   error
}

func newFakeDuplicates(participants *fakeParticipants, attendance *fakeAttendance) *fakeDuplicates {
	return &fakeDuplicates{
		participants: participants,
		attendance:   attendance,
		rejected:     map[[2]int64]*models.RejectedPair{},
	}
}

func (f *fakeDuplicates) SimilarSameBirthDate(context.Context, int, float64) ([]models.ScoredPair, error) {
	return f.similar, f.similarErr
}

func (f *fakeDuplicates) SameNameDifferentBirthDate(context.Context, int) ([]models.ScoredPair, error) {
	return f.sameName, nil
}

func (f *fakeDuplicates) RejectedPairs(context.Context, int) (map[[2]int64]bool, error) {
	out := map[[2]int64]bool{}
	for key := range f.rejected {
		out[key] = true
	}
	return out, nil
}

func (f *fakeDuplicates) RejectPair(_ context.Context, a, b int64, by *int64, reason string) (*models.RejectedPair, error) {
	for _, id := range []int64{a, b} {
		if _, ok := f.participants.rows[id]; !ok {
			return nil, apperrors.ErrParticipantNotFound
		}
	}
	lo, hi := models.CanonicalPair(a, b)
	pair := &models.RejectedPair{ParticipantA: lo, ParticipantB: hi, RejectedBy: by, Reason: reason}
	f.rejected[[2]int64{lo, hi}] = pair
	return pair, nil
}

func (f *fakeDuplicates) attendanceOf(id int64) map[int64]bool {
	out := map[int64]bool{}
	for key, present := range f.attendance.records {
		if key[0] == id {
			out[key[1]] = present
		}
	}
	return out
}

func (f *fakeDuplicates) Merge(c context.Context, winnerID, loserID int64, dryRun bool, plan repositories.MergePlanner) (models.MergePlan, error) {
	winner, err := f.participants.GetByID(c, winnerID)
	if err != nil {
		return models.MergePlan{}, err
	}
	loser, err := f.participants.GetByID(c, loserID)
	if err != nil {
		return models.MergePlan{}, err
	}

	result, err := plan(models.MergeState{
		Winner:           *winner,
		Loser:            *loser,
		WinnerAttendance: f.attendanceOf(winnerID),
		LoserAttendance:  f.attendanceOf(loserID),
	})
	if err != nil || dryRun {
		return result, err
	}

	for _, day := range result.ReassignDays {
		f.attendance.records[[2]int64{winnerID, day}] = f.attendance.records[[2]int64{loserID, day}]
	}
	for key := range f.attendance.records {
		if key[0] == loserID {
			delete(f.attendance.records, key)
		}
	}
	if result.CopyPhoto {
		f.participants.rows[winnerID].Photo = result.Photo
	}
	delete(f.participants.rows, loserID)
	return result, nil
}

func TestPlanMerge(t *testing.T) {
	born := date("2010-05-01")
	state := models.MergeState{
		Winner:           models.Participant{ID: 1, BirthDate: born},
		Loser:            models.Participant{ID: 2, BirthDate: born, Photo: "participants/b.jpg"},
		WinnerAttendance: map[int64]bool{10: true, 11: false},
		LoserAttendance:  map[int64]bool{10: true, 11: true, 12: false, 13: true},
	}

	plan, err := PlanMerge(state, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 13}, plan.ReassignDays)
	assert.Equal(t, []int64{10}, plan.DuplicateDays)
	assert.Equal(t, []int64{11}, plan.ConflictDays)
	assert.True(t, plan.CopyPhoto)
	assert.Equal(t, "participants/b.jpg", plan.Photo)

	state.Winner.Photo = "participants/a.jpg"
	plan, err = PlanMerge(state, false)
	require.NoError(t, err)
	assert.False(t, plan.CopyPhoto)
}

func TestPlanMerge_BirthDateGate(t *testing.T) {
	state := models.MergeState{
		Winner: models.Participant{ID: 1, BirthDate: date("2010-05-01")},
		Loser:  models.Participant{ID: 2, BirthDate: date("2010-05-02")},
	}

	_, err := PlanMerge(state, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	_, err = PlanMerge(state, true)
	assert.NoError(t, err)
}

type duplicateFixture struct {
	participants *fakeParticipants
	attendance   *fakeAttendance
	store        *fakeDuplicates
}

func newDuplicateFixture() *duplicateFixture {
	born := date("2010-05-01")
	participants := newFakeParticipants(
		models.Participant{ID: 1, GivenName: "Maria", FamilyName: "Silva", BirthDate: born, Year: 2025, CohortID: i64(5)},
		models.Participant{ID: 2, GivenName: "Maria", FamilyName: "Silvaa", BirthDate: born, Year: 2025},
		models.Participant{ID: 3, GivenName: "joão", FamilyName: "Pereira", BirthDate: date("2011-01-01"), Year: 2025, ImperioID: i64(8)},
		models.Participant{ID: 4, GivenName: "João ", FamilyName: "pereira", BirthDate: date("2011-02-01"), Year: 2025},
		models.Participant{ID: 5, GivenName: "Zeca", FamilyName: "Alves", BirthDate: born, Year: 2025},
		models.Participant{ID: 6, GivenName: "Maria", FamilyName: "Silva", BirthDate: date("2012-07-07"), Year: 2025},
	)
	attendance := newFakeAttendance(participants)
	return &duplicateFixture{
		participants: participants,
		attendance:   attendance,
		store:        newFakeDuplicates(participants, attendance),
	}
}

func TestSuggest_ApplicationBackend(t *testing.T) {
	f := newDuplicateFixture()
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025},
		DuplicateSettings{Backend: BackendApplication})

	res, err := svc.Suggest(ctx, 2025, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDuplicateThreshold, res.Threshold)
	assert.Equal(t, DefaultDuplicateLimit, res.Limit)

	type pair struct {
		a, b   int64
		differ bool
		winner *int64
	}
	var got []pair
	for _, c := range res.Candidates {
		got = append(got, pair{c.A.ID, c.B.ID, c.DatesDiffer, c.RecommendedWinnerID})
	}
	assert.Equal(t, []pair{
		{1, 2, false, i64(1)},
		{1, 6, true, i64(1)},
		{3, 4, true, i64(3)},
	}, got)
	for i := 1; i < len(res.Candidates); i++ {
		assert.GreaterOrEqual(t, res.Candidates[i-1].Score, res.Candidates[i].Score)
	}

	_, err = svc.RejectPair(ctx, 1, dto.RejectPairRequest{ParticipantA: 2, ParticipantB: 1})
	require.NoError(t, err)
	res, err = svc.Suggest(ctx, 2025, 0, 2)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	for _, c := range res.Candidates {
		assert.False(t, c.A.ID == 1 && c.B.ID == 2, "rejected pair is hidden")
	}
}

func TestSuggest_PostgresBackendDedupes(t *testing.T) {
	f := newDuplicateFixture()
	f.store.similar = []models.ScoredPair{{A: 2, B: 1, Score: 0.8}}
	f.store.sameName = []models.ScoredPair{{A: 1, B: 2, Score: 0.7, DatesDiffer: true}, {A: 3, B: 4, Score: 0.7, DatesDiffer: true}}
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

	res, err := svc.Suggest(ctx, 2025, 0.75, 10)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, int64(1), res.Candidates[0].A.ID)
	assert.InDelta(t, 0.8, res.Candidates[0].Score, 1e-9)
	assert.False(t, res.Candidates[0].DatesDiffer)
}

func TestSuggest_SimilarityUnavailable(t *testing.T) {
	f := newDuplicateFixture()
	f.store.similarErr = apperrors.NewCustomError(apperrors.ErrSimilarityUnavailable, "similarity search unavailable")
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{Backend: BackendPostgres})

	_, err := svc.Suggest(ctx, 2025, 0, 0)
	assert.True(t, errors.Is(err, apperrors.ErrSimilarityUnavailable))
}

func TestSuggest_Validation(t *testing.T) {
	f := newDuplicateFixture()
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

	_, err := svc.Suggest(ctx, 2025, 1.5, 0)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	_, err = svc.Suggest(ctx, 2025, 0.5, -1)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestRejectPair(t *testing.T) {
	f := newDuplicateFixture()
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

	tests := []struct {
		name    string
		req     dto.RejectPairRequest
		wantErr error
	}{
		{name: "same id", req: dto.RejectPairRequest{ParticipantA: 1, ParticipantB: 1}, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown", req: dto.RejectPairRequest{ParticipantA: 1, ParticipantB: 99}, wantErr: apperrors.ErrResourceNotFound},
		{name: "canonical", req: dto.RejectPairRequest{ParticipantA: 4, ParticipantB: 3, Reason: " irmãos "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := svc.RejectPair(ctx, 7, tt.req)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(3), pair.ParticipantA)
			assert.Equal(t, int64(4), pair.ParticipantB)
			assert.Equal(t, "irmãos", pair.Reason)
			assert.Equal(t, int64(7), *pair.RejectedBy)
		})
	}
}

func TestMerge(t *testing.T) {
	f := newDuplicateFixture()
	f.attendance.records[[2]int64{1, 10}] = true
	f.attendance.records[[2]int64{1, 11}] = false
	f.attendance.records[[2]int64{2, 10}] = true
	f.attendance.records[[2]int64{2, 11}] = true
	f.attendance.records[[2]int64{2, 12}] = true
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

	dry, err := svc.Merge(ctx, 2025, 1, dto.MergeRequest{WinnerID: 1, LoserID: 2, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, models.MergeReport{WinnerID: 1, LoserID: 2, Reassigned: 1, DuplicatesRemoved: 1, ConflictsResolved: 1, DryRun: true}, *dry)
	assert.Len(t, f.attendance.records, 5)
	assert.Contains(t, f.participants.rows, int64(2))

	report, err := svc.Merge(ctx, 2025, 1, dto.MergeRequest{WinnerID: 1, LoserID: 2})
	require.NoError(t, err)
	assert.Equal(t, dry.Reassigned, report.Reassigned)
	assert.False(t, report.DryRun)
	assert.Equal(t, map[[2]int64]bool{
		{1, 10}: true,
		{1, 11}: false,
		{1, 12}: true,
	}, f.attendance.records)
	assert.NotContains(t, f.participants.rows, int64(2))
}

func TestMerge_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		req     dto.MergeRequest
		wantErr error
	}{
		{name: "same ids", year: 2025, req: dto.MergeRequest{WinnerID: 1, LoserID: 1}, wantErr: apperrors.ErrValidationFailed},
		{name: "missing loser", year: 2025, req: dto.MergeRequest{WinnerID: 1, LoserID: 99}, wantErr: apperrors.ErrResourceNotFound},
		{name: "birth dates differ", year: 2025, req: dto.MergeRequest{WinnerID: 1, LoserID: 6}, wantErr: apperrors.ErrConflict},
		{name: "closed year", year: 2024, req: dto.MergeRequest{WinnerID: 1, LoserID: 2}, wantErr: apperrors.ErrReadonlyYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDuplicateFixture()
			f.attendance.records[[2]int64{6, 10}] = true
			svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

			_, err := svc.Merge(ctx, tt.year, 1, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			assert.Len(t, f.participants.rows, 6)
			assert.True(t, f.attendance.records[[2]int64{6, 10}])
		})
	}

	f := newDuplicateFixture()
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})
	_, err := svc.Merge(ctx, 2025, 1, dto.MergeRequest{WinnerID: 1, LoserID: 6, AllowDifferentBirthDate: true})
	require.NoError(t, err)
	assert.NotContains(t, f.participants.rows, int64(6))
}

func TestMerge_ParticipantsOfClosedYear(t *testing.T) {
	born := date("2010-05-01")
	f := newDuplicateFixture()
	f.participants.rows[40] = &models.Participant{ID: 40, GivenName: "Lia", FamilyName: "Costa", BirthDate: born, Year: 2024}
	f.participants.rows[41] = &models.Participant{ID: 41, GivenName: "Lia", FamilyName: "Costta", BirthDate: born, Year: 2024}
	f.attendance.records[[2]int64{41, 20}] = true
	svc := NewDuplicateService(f.store, f.participants, YearPolicy{Current: 2025}, DuplicateSettings{})

	tests := []struct {
		name   string
		winner int64
		loser  int64
	}{
		{name: "both closed", winner: 40, loser: 41},
		{name: "loser closed", winner: 1, loser: 41},
		{name: "winner closed", winner: 40, loser: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Merge(ctx, 2025, 1, dto.MergeRequest{WinnerID: tt.winner, LoserID: tt.loser})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrReadonlyYear), err.Error())
			assert.Contains(t, f.participants.rows, tt.loser)
			assert.True(t, f.attendance.records[[2]int64{41, 20}])
		})
	}

	dry, err := svc.Merge(ctx, 2025, 1, dto.MergeRequest{WinnerID: 40, LoserID: 41, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, dry.Reassigned)
	assert.Contains(t, f.participants.rows, int64(41))
}
