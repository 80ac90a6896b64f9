package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventDayFixture() (*fakeDays, EventDayService) {
	days := newFakeDays(models.EventDay{ID: 1, Date: date("2025-06-07"), Year: 2025})
	svc := NewEventDayService(days, YearPolicy{Current: 2025})
	svc.(*eventDayServiceImpl).now = func() time.Time { return date("2025-06-01").Add(15 * time.Hour) }
	return days, svc
}

func TestEventDayCreate(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		req     dto.EventDayRequest
		wantErr error
	}{
		{name: "today", year: 2025, req: dto.EventDayRequest{Date: "2025-06-01", Title: " Culto "}},
		{name: "brazilian format", year: 2025, req: dto.EventDayRequest{Date: "14/06/2025"}},
		{name: "past", year: 2025, req: dto.EventDayRequest{Date: "2025-05-31"}, wantErr: apperrors.ErrValidationFailed},
		{name: "garbage", year: 2025, req: dto.EventDayRequest{Date: "junho"}, wantErr: apperrors.ErrValidationFailed},
		{name: "long title", year: 2025, req: dto.EventDayRequest{Date: "2025-06-21", Title: strings.Repeat("a", 101)}, wantErr: apperrors.ErrValidationFailed},
		{name: "closed year", year: 2024, req: dto.EventDayRequest{Date: "2025-06-21"}, wantErr: apperrors.ErrReadonlyYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newEventDayFixture()
			day, err := svc.Create(ctx, tt.year, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2025, day.Year)
			assert.Equal(t, strings.TrimSpace(tt.req.Title), day.Title)
		})
	}
}

func TestEventDayCreate_DuplicateDate(t *testing.T) {
	days, svc := newEventDayFixture()
	_, err := svc.Create(ctx, 2025, dto.EventDayRequest{Date: "2025-06-07"})
	require.Error(t, err)
	assert.Len(t, days.rows, 1)
}

func TestEventDayList_Average(t *testing.T) {
	days, svc := newEventDayFixture()
	days.rows[2] = &models.EventDay{ID: 2, Date: date("2025-06-14"), Year: 2025}
	days.rows[3] = &models.EventDay{ID: 3, Date: date("2024-06-14"), Year: 2024}
	attendance := newFakeAttendance(newFakeParticipants())
	attendance.records[[2]int64{1, 1}] = true
	attendance.records[[2]int64{2, 1}] = true
	attendance.records[[2]int64{1, 2}] = true
	attendance.records[[2]int64{2, 2}] = false
	days.attendance = attendance

	res, err := svc.List(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(2), res.Items[0].ID, "newest first")
	assert.Equal(t, 1.5, res.AveragePresent)

	res, err = svc.List(ctx, 2023)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.AveragePresent)
}
