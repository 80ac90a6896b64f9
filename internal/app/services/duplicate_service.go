package services

import (
	"context"
	"sort"
	"strings"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/pkg/similarity"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

// Similarity backends
const (
	BackendPostgres    = "postgres"
	BackendApplication = "application"
)

const (
	DefaultDuplicateThreshold = 0.75
	DefaultDuplicateLimit     = 50
	MaxDuplicateLimit         = 500
	sameNameDuplicateScore    = 0.70
)

// DuplicateService suggests, rejects and merges duplicate registrations
type DuplicateService interface {
	Suggest(ctx context.Context, year int, threshold float64, limit int) (*dto.DuplicateListResponse, error)
	RejectPair(ctx context.Context, actor int64, req dto.RejectPairRequest) (*models.RejectedPair, error)
	Merge(ctx context.Context, year int, actor int64, req dto.MergeRequest) (*models.MergeReport, error)
}

// DuplicateSettings are the duplicate detection knobs taken from config
type DuplicateSettings struct {
	Backend          string
	DefaultThreshold float64
	DefaultLimit     int
}

type duplicateServiceImpl struct {
	duplicates   DuplicateStore
	participants ParticipantStore
	years        YearPolicy
	settings     DuplicateSettings
}

// NewDuplicateService creates a new duplicate service
func NewDuplicateService(duplicates DuplicateStore, participants ParticipantStore, years YearPolicy, settings DuplicateSettings) DuplicateService {
	if settings.Backend == "" {
		settings.Backend = BackendPostgres
	}
	if settings.DefaultThreshold <= 0 || settings.DefaultThreshold > 1 {
		settings.DefaultThreshold = DefaultDuplicateThreshold
	}
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = DefaultDuplicateLimit
	}
	return &duplicateServiceImpl{
		duplicates:   duplicates,
		participants: participants,
		years:        years,
		settings:     settings,
	}
}

// Suggest lists likely duplicate pairs of year, best matches first
func (s *duplicateServiceImpl) Suggest(ctx context.Context, year int, threshold float64, limit int) (*dto.DuplicateListResponse, error) {
	if threshold == 0 {
		threshold = s.settings.DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, apperrors.NewValidationError("threshold", "threshold must be between 0 and 1")
	}
	if limit == 0 {
		limit = s.settings.DefaultLimit
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit", "limit must be positive")
	}
	limit = min(limit, MaxDuplicateLimit)

	participants, err := s.participants.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	var pairs []models.ScoredPair
	switch s.settings.Backend {
	case BackendApplication:
		rejected, err := s.duplicates.RejectedPairs(ctx, year)
		if err != nil {
			return nil, err
		}
		pairs = scorePairs(participants, threshold, rejected)
	default:
		similar, err := s.duplicates.SimilarSameBirthDate(ctx, year, threshold)
		if err != nil {
			return nil, err
		}
		sameName, err := s.duplicates.SameNameDifferentBirthDate(ctx, year)
		if err != nil {
			return nil, err
		}
		pairs = append(similar, sameName...)
	}

	candidates := buildCandidates(pairs, participants, limit)
	logger.Debug().Int("year", year).Int("candidates", len(candidates)).Str("backend", s.settings.Backend).
		Msg("Duplicate suggestions computed")

	return &dto.DuplicateListResponse{
		Threshold:  threshold,
		Limit:      limit,
		Candidates: candidates,
	}, nil
}

func nameKey(p models.Participant) string {
	return strings.ToLower(strings.TrimSpace(p.GivenName)) + "\x00" + strings.ToLower(strings.TrimSpace(p.FamilyName))
}

// scorePairs finds the same candidates as the pg_trgm queries, in memory.
// Participants must be scoped to one year.
func scorePairs(participants []models.Participant, threshold float64, rejected map[[2]int64]bool) []models.ScoredPair {
	byBirth := make(map[string][]models.Participant)
	byName := make(map[string][]models.Participant)
	for _, p := range participants {
		day := p.BirthDate.Format(models.DateLayout)
		byBirth[day] = append(byBirth[day], p)
		byName[nameKey(p)] = append(byName[nameKey(p)], p)
	}

	scorer := similarity.NewScorer()
	var pairs []models.ScoredPair
	eachPair := func(group []models.Participant, fn func(a, b models.Participant)) {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				lo, hi := models.CanonicalPair(group[i].ID, group[j].ID)
				if !rejected[[2]int64{lo, hi}] {
					fn(group[i], group[j])
				}
			}
		}
	}

	for _, group := range byBirth {
		eachPair(group, func(a, b models.Participant) {
			if score := scorer.Score(a.FullName(), b.FullName()); score >= threshold {
				pairs = append(pairs, models.ScoredPair{A: a.ID, B: b.ID, Score: score})
			}
		})
	}
	for _, group := range byName {
		eachPair(group, func(a, b models.Participant) {
			if !sameDay(a.BirthDate, b.BirthDate) {
				pairs = append(pairs, models.ScoredPair{A: a.ID, B: b.ID, Score: sameNameDuplicateScore, DatesDiffer: true})
			}
		})
	}
	return pairs
}

// recommendWinner prefers the only one holding a cohort, then the only one
// holding an império.
func recommendWinner(a, b models.Participant) *int64 {
	pick := func(p models.Participant) *int64 {
		id := p.ID
		return &id
	}
	switch {
	case a.HasCohort() && !b.HasCohort():
		return pick(a)
	case b.HasCohort() && !a.HasCohort():
		return pick(b)
	case a.HasImperio() && !b.HasImperio():
		return pick(a)
	case b.HasImperio() && !a.HasImperio():
		return pick(b)
	}
	return nil
}

// buildCandidates keeps the best score of each pair, attaches the
// participants and orders by score desc, then ids.
func buildCandidates(pairs []models.ScoredPair, participants []models.Participant, limit int) []models.DuplicateCandidate {
	byID := make(map[int64]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	best := make(map[[2]int64]models.ScoredPair, len(pairs))
	for _, p := range pairs {
		p.A, p.B = models.CanonicalPair(p.A, p.B)
		key := [2]int64{p.A, p.B}
		if cur, ok := best[key]; !ok || p.Score > cur.Score {
			best[key] = p
		}
	}

	candidates := make([]models.DuplicateCandidate, 0, len(best))
	for _, p := range best {
		a, okA := byID[p.A]
		b, okB := byID[p.B]
		if !okA || !okB {
			continue
		}
		candidates = append(candidates, models.DuplicateCandidate{
			A:                   a,
			B:                   b,
			Score:               p.Score,
			DatesDiffer:         p.DatesDiffer,
			RecommendedWinnerID: recommendWinner(a, b),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Score != cj.Score {
			return ci.Score > cj.Score
		}
		if ci.A.ID != cj.A.ID {
			return ci.A.ID < cj.A.ID
		}
		return ci.B.ID < cj.B.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// RejectPair records that two participants are not the same person
func (s *duplicateServiceImpl) RejectPair(ctx context.Context, actor int64, req dto.RejectPairRequest) (*models.RejectedPair, error) {
	if req.ParticipantA <= 0 || req.ParticipantB <= 0 {
		return nil, apperrors.NewValidationError("participantA", "both participants are required")
	}
	if req.ParticipantA == req.ParticipantB {
		return nil, apperrors.NewValidationError("participantB", "a participant cannot be paired with itself")
	}
	reason := strings.TrimSpace(req.Reason)
	if len([]rune(reason)) > validation.ReasonMaxLen {
		return nil, apperrors.NewValidationError("reason", "reason is too long")
	}

	var by *int64
	if actor > 0 {
		by = &actor
	}
	return s.duplicates.RejectPair(ctx, req.ParticipantA, req.ParticipantB, by, reason)
}

// Merge folds the loser into the winner, or reports what that would do
func (s *duplicateServiceImpl) Merge(ctx context.Context, year int, actor int64, req dto.MergeRequest) (*models.MergeReport, error) {
	if req.WinnerID <= 0 || req.LoserID <= 0 {
		return nil, apperrors.NewValidationError("winnerId", "winner and loser are required")
	}
	if req.WinnerID == req.LoserID {
		return nil, apperrors.NewValidationError("loserId", "cannot merge a participant into itself")
	}
	if !req.DryRun {
		if err := s.years.EnsureWritable(year); err != nil {
			return nil, err
		}
	}

	plan, err := s.duplicates.Merge(ctx, req.WinnerID, req.LoserID, req.DryRun, mergePlanner(s.years, req.DryRun, req.AllowDifferentBirthDate))
	if err != nil {
		return nil, err
	}

	report := plan.Report(req.WinnerID, req.LoserID, req.DryRun)
	logger.Info().
		Int64("actorID", actor).
		Int64("winnerID", req.WinnerID).
		Int64("loserID", req.LoserID).
		Bool("dryRun", req.DryRun).
		Int("reassigned", report.Reassigned).
		Int("conflictsResolved", report.ConflictsResolved).
		Msg("Merge processed")
	return &report, nil
}
