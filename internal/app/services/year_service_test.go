package services

import (
	"errors"
	"testing"

	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearService_Available(t *testing.T) {
	tests := []struct {
		name     string
		stored   []int
		active   int
		want     []int
		readOnly bool
	}{
		{"no data yet", nil, 2025, []int{2025}, false},
		{"current already stored", []int{2024, 2025, 2023}, 2025, []int{2025, 2024, 2023}, false},
		{"future year", []int{2026}, 2026, []int{2026, 2025}, false},
		{"past year is read-only", []int{2023}, 2023, []int{2025, 2023}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			participants := newFakeParticipants()
			participants.years = tt.stored
			svc := NewYearService(participants, YearPolicy{Current: 2025})

			res, err := svc.Available(ctx, tt.active)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Years)
			assert.Equal(t, tt.active, res.Active)
			assert.Equal(t, 2025, res.Current)
			assert.Equal(t, tt.readOnly, res.ReadOnly)
		})
	}
}

func TestYearService_Validate(t *testing.T) {
	svc := NewYearService(newFakeParticipants(), YearPolicy{Current: 2025})

	assert.NoError(t, svc.Validate(2024))
	assert.True(t, errors.Is(svc.Validate(1999), apperrors.ErrValidationFailed))
	assert.True(t, errors.Is(svc.Validate(2101), apperrors.ErrValidationFailed))
}

func TestYearPolicy_EnsureWritable(t *testing.T) {
	p := YearPolicy{Current: 2025}

	assert.NoError(t, p.EnsureWritable(2025))
	assert.NoError(t, p.EnsureWritable(2026))
	assert.True(t, errors.Is(p.EnsureWritable(2024), apperrors.ErrReadonlyYear))
}
