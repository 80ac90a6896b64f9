package repositories

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSB = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func TestNameSearchCondition(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		wantArgs []interface{}
	}{
		{
			name:     "single word",
			term:     "ana",
			wantArgs: []interface{}{"%ana%", "%ana%"},
		},
		{
			name: "two words",
			term: "Ana Souza",
			wantArgs: []interface{}{
				"%Ana Souza%", "%Ana Souza%",
				"%Souza Ana%", "%Souza Ana%",
				"%Ana%", "%Ana%", "%Souza%", "%Souza%",
			},
		},
		{
			name:     "wildcards escaped",
			term:     "50%_off",
			wantArgs: []interface{}{`%50\%\_off%`, `%50\%\_off%`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := nameSearchCondition(models.ParseNameQuery(tt.term)).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "p.given_name ILIKE")
			assert.Contains(t, sql, "p.family_name ILIKE")
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestApplyParticipantFilter(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	cohort := int64(4)

	tests := []struct {
		name         string
		q            dto.ParticipantQuery
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "year only",
			q:            dto.ParticipantQuery{},
			wantContains: []string{"p.year = $1"},
			wantAbsent:   []string{"ILIKE", "EXISTS", "cohort_id IS NULL"},
		},
		{
			name:         "no cohort and gender",
			q:            dto.ParticipantQuery{NoCohort: true, Gender: models.GenderFemale},
			wantContains: []string{"p.cohort_id IS NULL", "p.gender = $2"},
		},
		{
			name:         "cohort id wins only without none flag",
			q:            dto.ParticipantQuery{CohortID: &cohort},
			wantContains: []string{"p.cohort_id = $2"},
		},
		{
			name:         "no imperio and birth year",
			q:            dto.ParticipantQuery{NoImperio: true, BirthYear: 2010},
			wantContains: []string{"p.imperio_id IS NULL", "EXTRACT(YEAR FROM p.birth_date) = $2"},
		},
		{
			name:         "recent presence",
			q:            dto.ParticipantQuery{Attendance: enums.AttendancePresent},
			wantContains: []string{"EXISTS (SELECT 1 FROM attendance_records ar JOIN event_days d", "d.event_date >= $2 AND d.event_date <= $3"},
			wantAbsent:   []string{"NOT EXISTS"},
		},
		{
			name:         "absent in window",
			q:            dto.ParticipantQuery{Attendance: enums.AttendanceAbsent},
			wantContains: []string{"NOT EXISTS (SELECT 1 FROM attendance_records ar JOIN event_days d"},
		},
		{
			name:         "never present",
			q:            dto.ParticipantQuery{Attendance: enums.AttendanceNever},
			wantContains: []string{"NOT EXISTS (SELECT 1 FROM attendance_records ar WHERE ar.participant_id = p.id AND ar.present)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := applyParticipantFilter(selectParticipants(testSB), 2025, tt.q, now, 30).ToSql()
			require.NoError(t, err)
			for _, s := range tt.wantContains {
				assert.Contains(t, sql, s)
			}
			for _, s := range tt.wantAbsent {
				assert.NotContains(t, sql, s)
			}
		})
	}
}

func TestApplyParticipantFilter_Window(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	for _, bucket := range []enums.AttendanceBucket{enums.AttendancePresent, enums.AttendanceAbsent} {
		t.Run(string(bucket), func(t *testing.T) {
			_, args, err := applyParticipantFilter(selectParticipants(testSB), 2025,
				dto.ParticipantQuery{Attendance: bucket}, now, 30).ToSql()
			require.NoError(t, err)
			require.Len(t, args, 3)
			assert.Equal(t, now.AddDate(0, 0, -30), args[1])
			assert.Equal(t, now, args[2], "future days are outside the window")
		})
	}
}

func TestParticipantOrderBy(t *testing.T) {
	tests := []struct {
		field enums.SortField
		desc  bool
		want  []string
	}{
		{enums.SortName, false, []string{"p.given_name ASC", "p.family_name ASC", "p.id ASC"}},
		{enums.SortFamilyName, true, []string{"p.family_name DESC", "p.given_name ASC", "p.id ASC"}},
		{enums.SortGender, false, []string{"p.gender ASC", "p.given_name ASC", "p.family_name ASC", "p.id ASC"}},
		{enums.SortCohort, true, []string{"c.name DESC", "p.given_name ASC", "p.family_name ASC", "p.id ASC"}},
		{enums.SortField("bogus"), false, []string{"p.given_name ASC", "p.family_name ASC", "p.id ASC"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.want, participantOrderBy(tt.field, tt.desc))
		})
	}
}

func TestDuplicateQueries(t *testing.T) {
	r := &DuplicateRepository{sb: testSB}

	sql, args, err := r.similarBirthDateQuery(2025, 0.75).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "a.id < b.id AND a.birth_date = b.birth_date")
	assert.Contains(t, sql, "similarity(a.given_name || ' ' || a.family_name, b.given_name || ' ' || b.family_name) >= $3")
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM rejected_duplicate_pairs r")
	assert.Equal(t, []interface{}{2025, 2025, 0.75}, args)

	sql, _, err = r.sameNameQuery(2025).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "a.birth_date <> b.birth_date")
	assert.Contains(t, sql, "LOWER(TRIM(a.given_name)) = LOWER(TRIM(b.given_name))")
}

func TestGroupPresenceQuery(t *testing.T) {
	r := &ReportRepository{sb: testSB}

	b, err := r.groupPresenceQuery(GroupImperio, 2025, []int64{1, 2})
	require.NoError(t, err)
	sql, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM imperios g")
	assert.Contains(t, sql, "p.imperio_id = g.id")
	assert.Contains(t, sql, "ar.event_day_id = ANY($1)")
	assert.Contains(t, sql, "g.year = $2")
	assert.Equal(t, []interface{}{[]int64{1, 2}, 2025}, args)

	_, err = r.groupPresenceQuery(GroupKind("faculty"), 2025, nil)
	assert.Error(t, err)
}

func TestHeadcountTable(t *testing.T) {
	table, err := headcountTable(models.HeadcountAuditorium)
	require.NoError(t, err)
	assert.Equal(t, "auditorium_counts", table)

	table, err = headcountTable(models.HeadcountVisitors)
	require.NoError(t, err)
	assert.Equal(t, "visitor_counts", table)

	_, err = headcountTable("other")
	assert.Error(t, err)
}

func TestSortedIDs(t *testing.T) {
	assert.Equal(t, []int64{2, 5, 9}, sortedIDs(map[int64]bool{9: true, 2: false, 5: true}))
}
