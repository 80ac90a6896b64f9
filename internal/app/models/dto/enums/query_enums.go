package enums

import "strings"

// SortField is a participant listing sort key
type SortField string

const (
	SortName       SortField = "name"
	SortFamilyName SortField = "family_name"
	SortGender     SortField = "gender"
	SortBirthDate  SortField = "birth_date"
	SortCohort     SortField = "cohort"
	SortImperio    SortField = "imperio"
)

// ParseSortField maps a request value onto a SortField, defaulting to name.
// The Portuguese keys of the old listing page are accepted too.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "family_name", "sobrenome":
		return SortFamilyName
	case "gender", "genero":
		return SortGender
	case "birth_date", "data_nascimento":
		return SortBirthDate
	case "cohort", "pg":
		return SortCohort
	case "imperio":
		return SortImperio
	default:
		return SortName
	}
}

// AttendanceBucket filters participants by attendance recency
type AttendanceBucket string

const (
	AttendanceAny     AttendanceBucket = ""
	AttendancePresent AttendanceBucket = "present_30d"
	AttendanceAbsent  AttendanceBucket = "absent_30d"
	AttendanceNever   AttendanceBucket = "never"
)

// ParseAttendanceBucket returns AttendanceAny for unknown values.
func ParseAttendanceBucket(s string) AttendanceBucket {
	switch b := AttendanceBucket(strings.TrimSpace(s)); b {
	case AttendancePresent, AttendanceAbsent, AttendanceNever:
		return b
	default:
		return AttendanceAny
	}
}

// RosterStatus filters a check-in roster
type RosterStatus string

const (
	RosterAll     RosterStatus = "all"
	RosterPresent RosterStatus = "present"
	RosterAbsent  RosterStatus = "absent"
)

// ParseRosterStatus accepts the English values and the old "todos",
// "presentes" and "ausentes" keys.
func ParseRosterStatus(s string) RosterStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "presentes":
		return RosterPresent
	case "absent", "ausentes":
		return RosterAbsent
	default:
		return RosterAll
	}
}
