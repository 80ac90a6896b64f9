package services

import (
	"context"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/repositories"
)

// The store interfaces below are implemented by the repositories package.

// ParticipantStore persists participants
type ParticipantStore interface {
	Create(ctx context.Context, p *models.Participant) (int64, error)
	Update(ctx context.Context, p *models.Participant) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	List(ctx context.Context, year int, q dto.ParticipantQuery, now time.Time, windowDays, pageSize int) (*dto.ParticipantListResponse, error)
	ListByYear(ctx context.Context, year int) ([]models.Participant, error)
	ListByCohort(ctx context.Context, cohortID int64) ([]models.Participant, error)
	ListByImperio(ctx context.Context, imperioID int64) ([]models.Participant, error)
	ListWithPhotos(ctx context.Context) ([]models.Participant, error)
	SetPhoto(ctx context.Context, id int64, photo string) error
	BulkAssign(ctx context.Context, year int, ids []int64, cohortID, imperioID *int64) (int64, error)
	RemoveFromGroup(ctx context.Context, column string, groupID int64, ids []int64) (int64, error)
	Years(ctx context.Context) ([]int, error)
}

// CohortStore persists cohorts
type CohortStore interface {
	Create(ctx context.Context, c *models.Cohort) (int64, error)
	Update(ctx context.Context, c *models.Cohort) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Cohort, error)
	ListByYear(ctx context.Context, year int) ([]models.Cohort, error)
}

// ImperioStore persists impérios
type ImperioStore interface {
	Create(ctx context.Context, i *models.Imperio) (int64, error)
	Update(ctx context.Context, i *models.Imperio) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Imperio, error)
	ListByYear(ctx context.Context, year int) ([]models.Imperio, error)
}

// EventDayStore persists event days
type EventDayStore interface {
	Create(ctx context.Context, d *models.EventDay) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.EventDay, error)
	ListByYear(ctx context.Context, year int) ([]models.EventDay, error)
	ListSummaries(ctx context.Context, year int) ([]models.EventDaySummary, error)
}

// AttendanceStore persists attendance records
type AttendanceStore interface {
	ReplaceDay(ctx context.Context, dayID int64, presence map[int64]bool) (int64, error)
	Upsert(ctx context.Context, participantID, dayID int64, present bool) (bool, error)
	PresentIDs(ctx context.Context, dayID int64) (map[int64]bool, error)
	PresenceTallies(ctx context.Context, year int, dayID int64) ([]models.PresenceTally, error)
	ListForDay(ctx context.Context, dayID int64) ([]models.RosterEntry, error)
}

// HeadcountStore persists auditorium and visitor counts
type HeadcountStore interface {
	Upsert(ctx context.Context, kind models.HeadcountKind, dayID int64, quantity int, recordedBy *int64) (bool, error)
	GetForDay(ctx context.Context, kind models.HeadcountKind, dayID int64) (*models.Headcount, error)
	ListByYear(ctx context.Context, kind models.HeadcountKind, year int) ([]models.Headcount, error)
}

// DuplicateStore finds duplicate candidates and applies merges
type DuplicateStore interface {
	SimilarSameBirthDate(ctx context.Context, year int, threshold float64) ([]models.ScoredPair, error)
	SameNameDifferentBirthDate(ctx context.Context, year int) ([]models.ScoredPair, error)
	RejectedPairs(ctx context.Context, year int) (map[[2]int64]bool, error)
	RejectPair(ctx context.Context, a, b int64, rejectedBy *int64, reason string) (*models.RejectedPair, error)
	Merge(ctx context.Context, winnerID, loserID int64, dryRun bool, plan repositories.MergePlanner) (models.MergePlan, error)
}

// ReportStore runs dashboard aggregates
type ReportStore interface {
	Totals(ctx context.Context, year int) (dto.DashboardTotals, error)
	GenderCounts(ctx context.Context, year int) (map[models.Gender]int, error)
	GroupPresence(ctx context.Context, kind repositories.GroupKind, year int, dayIDs []int64) ([]dto.GroupRanking, error)
}

// UserStore persists staff accounts
type UserStore interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

// LiveFeed receives check-in activity for connected clients
type LiveFeed interface {
	AttendanceUpdated(dayID, participantID int64, present, created bool)
	CheckinSubmitted(dayID int64, present, total int)
	HeadcountUpdated(dayID int64, kind models.HeadcountKind, quantity int)
}

// Notifier delivers a text message to the leaders
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// SheetWriter replaces a table in a spreadsheet
type SheetWriter interface {
	SpreadsheetID() string
	ReplaceTable(ctx context.Context, a1 string, header []string, rows [][]string) error
}

type noopFeed struct{}

func (noopFeed) AttendanceUpdated(int64, int64, bool, bool)         {}
func (noopFeed) CheckinSubmitted(int64, int, int)                   {}
func (noopFeed) HeadcountUpdated(int64, models.HeadcountKind, int) {}
