package repositories

import (
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
)

// participantColumns is the select list scanned by scanParticipant.
var participantColumns = []string{
	"p.id", "p.given_name", "p.family_name", "p.birth_date", "p.gender", "p.photo",
	"p.phone", "p.guardian_name", "p.guardian_phone",
	"p.cohort_id", "COALESCE(c.name, '')", "p.imperio_id", "COALESCE(i.name, '')",
	"p.year", "p.start_date", "p.created_at", "p.updated_at",
}

func selectParticipants(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(participantColumns...).
		From("participants p").
		LeftJoin("cohorts c ON c.id = p.cohort_id").
		LeftJoin("imperios i ON i.id = p.imperio_id")
}

// scanParticipant scans participantColumns into p, followed by any extra
// columns appended to the select list.
func scanParticipant(row interface{ Scan(...any) error }, p *models.Participant, extra ...any) error {
	var gender string
	dest := append([]any{
		&p.ID, &p.GivenName, &p.FamilyName, &p.BirthDate, &gender, &p.Photo,
		&p.Phone, &p.GuardianName, &p.GuardianPhone,
		&p.CohortID, &p.CohortName, &p.ImperioID, &p.ImperioName,
		&p.Year, &p.StartDate, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.Gender = models.Gender(gender)
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsEither(term string) squirrel.Or {
	pattern := "%" + escapeLike(term) + "%"
	return squirrel.Or{
		squirrel.ILike{"p.given_name": pattern},
		squirrel.ILike{"p.family_name": pattern},
	}
}

// nameSearchCondition is the SQL form of models.NameQuery.Match.
func nameSearchCondition(q models.NameQuery) squirrel.Sqlizer {
	if len(q.Words) == 1 {
		return containsEither(q.Words[0])
	}
	every := squirrel.And{}
	for _, w := range q.Words {
		every = append(every, containsEither(w))
	}
	return squirrel.Or{
		containsEither(q.Phrase()),
		containsEither(q.ReversedPhrase()),
		every,
	}
}

// attendanceCondition filters on presence within the window ending at now.
func attendanceCondition(bucket enums.AttendanceBucket, now time.Time, windowDays int) squirrel.Sqlizer {
	since := now.AddDate(0, 0, -windowDays)
	recent := `EXISTS (SELECT 1 FROM attendance_records ar JOIN event_days d ON d.id = ar.event_day_id
		WHERE ar.participant_id = p.id AND ar.present AND d.event_date >= ? AND d.event_date <= ?)`
	ever := `EXISTS (SELECT 1 FROM attendance_records ar WHERE ar.participant_id = p.id AND ar.present)`

	switch bucket {
	case enums.AttendancePresent:
		return squirrel.Expr(recent, since, now)
	case enums.AttendanceAbsent:
		return squirrel.Expr("NOT "+recent, since, now)
	case enums.AttendanceNever:
		return squirrel.Expr("NOT " + ever)
	default:
		return nil
	}
}

// applyParticipantFilter adds the year scope and every filter of q.
func applyParticipantFilter(b squirrel.SelectBuilder, year int, q dto.ParticipantQuery, now time.Time, windowDays int) squirrel.SelectBuilder {
	b = b.Where(squirrel.Eq{"p.year": year})

	if nq := models.ParseNameQuery(q.Search); !nq.Empty() {
		b = b.Where(nameSearchCondition(nq))
	}

	switch {
	case q.NoCohort:
		b = b.Where(squirrel.Eq{"p.cohort_id": nil})
	case q.CohortID != nil:
		b = b.Where(squirrel.Eq{"p.cohort_id": *q.CohortID})
	}

	switch {
	case q.NoImperio:
		b = b.Where(squirrel.Eq{"p.imperio_id": nil})
	case q.ImperioID != nil:
		b = b.Where(squirrel.Eq{"p.imperio_id": *q.ImperioID})
	}

	if q.Gender != "" {
		b = b.Where(squirrel.Eq{"p.gender": string(q.Gender)})
	}

	if q.BirthYear > 0 {
		b = b.Where(squirrel.Expr("EXTRACT(YEAR FROM p.birth_date) = ?", q.BirthYear))
	}

	if cond := attendanceCondition(q.Attendance, now, windowDays); cond != nil {
		b = b.Where(cond)
	}

	return b
}

// participantOrderBy returns the ORDER BY terms for a sort. Name and family
// name break ties for every other key, and id makes the order total.
func participantOrderBy(field enums.SortField, desc bool) []string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	var primary string
	switch field {
	case enums.SortFamilyName:
		return []string{"p.family_name " + dir, "p.given_name ASC", "p.id ASC"}
	case enums.SortGender:
		primary = "p.gender " + dir
	case enums.SortBirthDate:
		primary = "p.birth_date " + dir
	case enums.SortCohort:
		primary = "c.name " + dir
	case enums.SortImperio:
		primary = "i.name " + dir
	default:
		return []string{"p.given_name " + dir, "p.family_name ASC", "p.id ASC"}
	}
	return []string{primary, "p.given_name ASC", "p.family_name ASC", "p.id ASC"}
}
