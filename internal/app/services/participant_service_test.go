package services

import (
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type participantFixture struct {
	participants *fakeParticipants
	storage      *fakeStorage
	svc          ParticipantService
}

func newParticipantFixture() *participantFixture {
	f := &participantFixture{
		participants: newFakeParticipants(
			models.Participant{ID: 1, GivenName: "Ana", FamilyName: "Souza", Year: 2025, Photo: "participants/ana.jpg"},
			models.Participant{ID: 2, GivenName: "Bruno", FamilyName: "Lima", Year: 2024, Photo: "participants/bruno.jpg"},
			models.Participant{ID: 3, GivenName: "Caio", FamilyName: "Reis", Year: 2025, Photo: "participants/gone.jpg"},
		),
		storage: newFakeStorage("participants/ana.jpg", "participants/bruno.jpg"),
	}
	cohorts := newFakeCohorts(
		models.Cohort{ID: 1, Name: "Leões", Year: 2025},
		models.Cohort{ID: 2, Name: "Antigo", Year: 2024},
	)
	imperios := newFakeImperios(models.Imperio{ID: 1, Name: "Norte", Year: 2025})

	svc := NewParticipantService(f.participants, cohorts, imperios, f.storage, YearPolicy{Current: 2025}, ParticipantSettings{})
	svc.(*participantServiceImpl).now = func() time.Time { return date("2025-06-01") }
	f.svc = svc
	return f
}

func validInput() dto.ParticipantInput {
	return dto.ParticipantInput{
		GivenName:  "Davi",
		FamilyName: "Rocha",
		BirthDate:  date("2010-04-02"),
		Gender:     models.GenderMale,
		Phone:      "(11) 98888-7777",
	}
}

func TestParseParticipantRequest(t *testing.T) {
	in, err := ParseParticipantRequest(dto.ParticipantRequest{
		GivenName: "  Davi ",
		BirthDate: "2010-04-02",
		Gender:    "m",
		StartDate: "2025-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Davi", in.GivenName)
	assert.Equal(t, models.GenderMale, in.Gender)
	require.NotNil(t, in.StartDate)
	assert.Equal(t, date("2025-02-01"), *in.StartDate)

	_, err = ParseParticipantRequest(dto.ParticipantRequest{BirthDate: "02/04/2010"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = ParseParticipantRequest(dto.ParticipantRequest{BirthDate: "2010-04-02", StartDate: "amanhã"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestParticipantCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		mutate  func(in *dto.ParticipantInput)
		wantErr error
	}{
		{name: "valid", year: 2025, mutate: func(*dto.ParticipantInput) {}},
		{name: "blank name", year: 2025, mutate: func(in *dto.ParticipantInput) { in.GivenName = " " }, wantErr: apperrors.ErrValidationFailed},
		{name: "bad gender", year: 2025, mutate: func(in *dto.ParticipantInput) { in.Gender = "X" }, wantErr: apperrors.ErrValidationFailed},
		{name: "future birth", year: 2025, mutate: func(in *dto.ParticipantInput) { in.BirthDate = date("2025-06-02") }, wantErr: apperrors.ErrValidationFailed},
		{name: "bad phone", year: 2025, mutate: func(in *dto.ParticipantInput) { in.Phone = "abc" }, wantErr: apperrors.ErrValidationFailed},
		{name: "cohort of another year", year: 2025, mutate: func(in *dto.ParticipantInput) { in.CohortID = i64(2) }, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown imperio", year: 2025, mutate: func(in *dto.ParticipantInput) { in.ImperioID = i64(9) }, wantErr: apperrors.ErrResourceNotFound},
		{name: "closed year", year: 2024, mutate: func(*dto.ParticipantInput) {}, wantErr: apperrors.ErrReadonlyYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newParticipantFixture()
			in := validInput()
			tt.mutate(&in)

			p, err := f.svc.Create(ctx, tt.year, in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())
				assert.Len(t, f.participants.rows, 3)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2025, p.Year)
			assert.Equal(t, "Davi", p.GivenName)
		})
	}
}

func TestParticipantUpdate_UsesOwnYear(t *testing.T) {
	f := newParticipantFixture()

	_, err := f.svc.Update(ctx, 2, validInput())
	assert.True(t, errors.Is(err, apperrors.ErrReadonlyYear))

	in := validInput()
	in.CohortID = i64(1)
	p, err := f.svc.Update(ctx, 1, in)
	require.NoError(t, err)
	assert.Equal(t, "Davi", p.GivenName)
	assert.Equal(t, i64(1), p.CohortID)
	assert.Equal(t, "participants/ana.jpg", p.Photo)
}

func TestParticipantDelete_RemovesPhoto(t *testing.T) {
	f := newParticipantFixture()

	require.NoError(t, f.svc.Delete(ctx, 1))
	assert.NotContains(t, f.participants.rows, int64(1))
	assert.Equal(t, []string{"participants/ana.jpg"}, f.storage.deleted)

	err := f.svc.Delete(ctx, 2)
	assert.True(t, errors.Is(err, apperrors.ErrReadonlyYear))
	assert.Contains(t, f.participants.rows, int64(2))

	err = f.svc.Delete(ctx, 42)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestParticipantUploadPhoto_ReplacesOld(t *testing.T) {
	f := newParticipantFixture()

	p, err := f.svc.UploadPhoto(ctx, 1, &multipart.FileHeader{Filename: "nova.png"})
	require.NoError(t, err)
	assert.Equal(t, "participants/nova.png", p.Photo)
	assert.Equal(t, "participants/nova.png", f.participants.rows[1].Photo)
	assert.Equal(t, []string{"participants/ana.jpg"}, f.storage.deleted)

	_, err = f.svc.UploadPhoto(ctx, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestParticipantBulkAssign(t *testing.T) {
	f := newParticipantFixture()

	res, err := f.svc.BulkAssign(ctx, 2025, dto.BulkAssignRequest{ParticipantIDs: []int64{1, 2, 3}, ImperioID: i64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated, "participants of other years are skipped")
	assert.Nil(t, f.participants.rows[2].ImperioID)

	_, err = f.svc.BulkAssign(ctx, 2025, dto.BulkAssignRequest{ParticipantIDs: []int64{1}})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.svc.BulkAssign(ctx, 2025, dto.BulkAssignRequest{CohortID: i64(1)})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.svc.BulkAssign(ctx, 2025, dto.BulkAssignRequest{ParticipantIDs: []int64{1}, CohortID: i64(2)})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestCleanupOrphanedPhotos(t *testing.T) {
	f := newParticipantFixture()

	report, err := f.svc.CleanupOrphanedPhotos(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Orphaned)
	assert.Zero(t, report.Cleared)
	assert.Equal(t, []int64{3}, report.IDs)
	assert.Equal(t, "participants/gone.jpg", f.participants.rows[3].Photo)

	report, err = f.svc.CleanupOrphanedPhotos(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Cleared)
	assert.Empty(t, f.participants.rows[3].Photo)
	assert.Equal(t, "participants/bruno.jpg", f.participants.rows[2].Photo, "closed years are swept but kept files stay")
}
