package models

import "time"

// RejectedPair marks two participants as confirmed not to be duplicates.
// ParticipantA is always the lower id.
type RejectedPair struct {
	ID           int64     `json:"id"`
	ParticipantA int64     `json:"participantA"`
	ParticipantB int64     `json:"participantB"`
	RejectedBy   *int64    `json:"rejectedBy,omitempty"`
	RejectedAt   time.Time `json:"rejectedAt"`
	Reason       string    `json:"reason,omitempty"`
}

// CanonicalPair orders two ids so the lower comes first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// DuplicateCandidate is a suspected duplicate registration.
type DuplicateCandidate struct {
	A                   Participant `json:"a"`
	B                   Participant `json:"b"`
	Score               float64     `json:"score"`
	DatesDiffer         bool        `json:"datesDiffer"`
	RecommendedWinnerID *int64      `json:"recommendedWinnerId"`
}

// MergeReport summarizes a merge, or what a dry run would have done.
type MergeReport struct {
	WinnerID          int64 `json:"winnerId"`
	LoserID           int64 `json:"loserId"`
	Reassigned        int   `json:"reassigned"`
	DuplicatesRemoved int   `json:"duplicatesRemoved"`
	ConflictsResolved int   `json:"conflictsResolved"`
	PhotoCopied       bool  `json:"photoCopied"`
	DryRun            bool  `json:"dryRun"`
}

// MergeState is what a merge is planned from: both participants and their
// attendance, keyed by event day id.
type MergeState struct {
	Winner           Participant
	Loser            Participant
	WinnerAttendance map[int64]bool
	LoserAttendance  map[int64]bool
}

// MergePlan lists the writes a merge performs. Day ids refer to the
// loser's attendance records.
type MergePlan struct {
	ReassignDays  []int64
	DuplicateDays []int64
	ConflictDays  []int64
	CopyPhoto     bool
	Photo         string
}

// Report summarizes the plan for winner and loser.
func (p MergePlan) Report(winnerID, loserID int64, dryRun bool) MergeReport {
	return MergeReport{
		WinnerID:          winnerID,
		LoserID:           loserID,
		Reassigned:        len(p.ReassignDays),
		DuplicatesRemoved: len(p.DuplicateDays),
		ConflictsResolved: len(p.ConflictDays),
		PhotoCopied:       p.CopyPhoto,
		DryRun:            dryRun,
	}
}

// ScoredPair is a raw duplicate match before participants are attached.
// A is always the lower id.
type ScoredPair struct {
	A           int64
	B           int64
	Score       float64
	DatesDiffer bool
}
