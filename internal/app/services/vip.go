package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

// DefaultVIPThreshold is the attendance count up to which a participant
// without a cohort is still a VIP candidate.
const DefaultVIPThreshold = 3

// ClassifyVIP splits present participants without a cohort into candidates
// (count <= threshold) and those that need a cohort. Both lists are ordered
// by count, then given and family name.
func ClassifyVIP(tallies []models.PresenceTally, threshold int) (candidates, needsPlacement []dto.VIPEntry) {
	if threshold <= 0 {
		threshold = DefaultVIPThreshold
	}

	sorted := make([]models.PresenceTally, len(tallies))
	copy(sorted, tallies)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.PresentCount != b.PresentCount {
			return a.PresentCount < b.PresentCount
		}
		if a.GivenName != b.GivenName {
			return a.GivenName < b.GivenName
		}
		if a.FamilyName != b.FamilyName {
			return a.FamilyName < b.FamilyName
		}
		return a.ID < b.ID
	})

	candidates = []dto.VIPEntry{}
	needsPlacement = []dto.VIPEntry{}
	for _, t := range sorted {
		if t.HasCohort() {
			continue
		}
		entry := dto.VIPEntry{
			Participant:     t.Participant,
			PresentCount:    t.PresentCount,
			FirstAttendance: t.PresentCount == 1,
		}
		if t.PresentCount <= threshold {
			candidates = append(candidates, entry)
		} else {
			needsPlacement = append(needsPlacement, entry)
		}
	}
	return candidates, needsPlacement
}

// FormatVIPMessage renders a report as the plain text sent to the leaders
func FormatVIPMessage(r *dto.VIPReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "VIPs do dia %s", helpers.FormatBRDate(r.Day.Date))
	if r.Day.Title != "" {
		fmt.Fprintf(&b, " (%s)", r.Day.Title)
	}
	b.WriteString("\n")

	if len(r.Candidates) == 0 {
		b.WriteString("\nNenhum VIP neste dia.\n")
	} else {
		b.WriteString("\nVIPs:\n")
		for _, e := range r.Candidates {
			fmt.Fprintf(&b, "- %s (%dx)", e.FullName(), e.PresentCount)
			if e.FirstAttendance {
				b.WriteString(" primeira vez")
			}
			b.WriteString("\n")
		}
	}

	if len(r.NeedsPlacement) > 0 {
		fmt.Fprintf(&b, "\nSem PG após mais de %d presenças:\n", r.Threshold)
		for _, e := range r.NeedsPlacement {
			fmt.Fprintf(&b, "- %s (%dx)\n", e.FullName(), e.PresentCount)
		}
	}
	return b.String()
}
