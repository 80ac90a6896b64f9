package services

import (
	"errors"
	"testing"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupFixture() (*fakeParticipants, *fakeCohorts, *fakeImperios, GroupService) {
	participants := newFakeParticipants(
		models.Participant{ID: 1, GivenName: "Ana", Year: 2025},
		models.Participant{ID: 2, GivenName: "Bia", Year: 2025, CohortID: i64(1)},
		models.Participant{ID: 3, GivenName: "Caio", Year: 2024},
	)
	cohorts := newFakeCohorts(
		models.Cohort{ID: 1, Name: "Leões", Year: 2025},
		models.Cohort{ID: 2, Name: "Antigo", Year: 2024},
	)
	imperios := newFakeImperios(models.Imperio{ID: 1, Name: "Norte", Year: 2025})
	svc := NewGroupService(cohorts, imperios, participants, YearPolicy{Current: 2025})
	return participants, cohorts, imperios, svc
}

func TestCohortMembers(t *testing.T) {
	participants, _, _, svc := newGroupFixture()

	res, err := svc.AddCohortMembers(ctx, 1, []int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)
	assert.Equal(t, i64(1), participants.rows[1].CohortID)
	assert.Nil(t, participants.rows[3].CohortID)

	detail, err := svc.GetCohort(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Leões", detail.Cohort.Name)
	assert.Len(t, detail.Members, 2)

	res, err = svc.RemoveCohortMembers(ctx, 1, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)
	assert.Nil(t, participants.rows[2].CohortID)

	_, err = svc.AddCohortMembers(ctx, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.AddCohortMembers(ctx, 2, []int64{3})
	assert.True(t, errors.Is(err, apperrors.ErrReadonlyYear))
}

func TestCohortCRUD(t *testing.T) {
	_, cohorts, _, svc := newGroupFixture()

	c, err := svc.CreateCohort(ctx, 2025, dto.CohortRequest{Name: " Águias ", Tag: "A"})
	require.NoError(t, err)
	assert.Equal(t, "Águias", c.Name)
	assert.Equal(t, 2025, c.Year)

	_, err = svc.CreateCohort(ctx, 2025, dto.CohortRequest{Name: ""})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	c, err = svc.UpdateCohort(ctx, c.ID, dto.CohortRequest{Name: "Águias Reais"})
	require.NoError(t, err)
	assert.Equal(t, "Águias Reais", cohorts.rows[c.ID].Name)

	_, err = svc.UpdateCohort(ctx, 2, dto.CohortRequest{Name: "Novo"})
	assert.True(t, errors.Is(err, apperrors.ErrReadonlyYear))

	require.NoError(t, svc.DeleteCohort(ctx, c.ID))
	assert.NotContains(t, cohorts.rows, c.ID)

	err = svc.DeleteCohort(ctx, 99)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestImperio_NameUniquePerYear(t *testing.T) {
	participants, _, imperios, svc := newGroupFixture()

	_, err := svc.CreateImperio(ctx, 2025, dto.ImperioRequest{Name: "Norte"})
	require.Error(t, err)
	assert.Len(t, imperios.rows, 1)

	i, err := svc.CreateImperio(ctx, 2025, dto.ImperioRequest{Name: "Sul"})
	require.NoError(t, err)

	res, err := svc.AddImperioMembers(ctx, i.ID, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)

	detail, err := svc.GetImperio(ctx, i.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 2)

	res, err = svc.RemoveImperioMembers(ctx, i.ID, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)
	assert.Nil(t, participants.rows[1].ImperioID)
	assert.Equal(t, i64(i.ID), participants.rows[2].ImperioID)
}
