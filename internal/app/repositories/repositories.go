package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	ParticipantRepository *ParticipantRepository
	CohortRepository      *CohortRepository
	ImperioRepository     *ImperioRepository
	EventDayRepository    *EventDayRepository
	AttendanceRepository  *AttendanceRepository
	HeadcountRepository   *HeadcountRepository
	DuplicateRepository   *DuplicateRepository
	ReportRepository      *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		ParticipantRepository: NewParticipantRepository(db),
		CohortRepository:      NewCohortRepository(db),
		ImperioRepository:     NewImperioRepository(db),
		EventDayRepository:    NewEventDayRepository(db),
		AttendanceRepository:  NewAttendanceRepository(db),
		HeadcountRepository:   NewHeadcountRepository(db),
		DuplicateRepository:   NewDuplicateRepository(db),
		ReportRepository:      NewReportRepository(db),
	}
}
