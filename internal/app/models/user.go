package models

import "time"

// Permission is a capability granted to a staff user.
type Permission string

const (
	PermViewDashboard      Permission = "view_dashboard"
	PermViewGroups         Permission = "view_groups"
	PermReviewDuplicates   Permission = "review_duplicates"
	PermAddEventDay        Permission = "add_event_day"
	PermAddAuditoriumCount Permission = "add_auditorium_count"
	PermAddVisitorCount    Permission = "add_visitor_count"
	PermManageParticipants Permission = "manage_participants"
	PermExportData         Permission = "export_data"
)

// AllPermissions lists every capability, in display order.
var AllPermissions = []Permission{
	PermViewDashboard,
	PermViewGroups,
	PermReviewDuplicates,
	PermAddEventDay,
	PermAddAuditoriumCount,
	PermAddVisitorCount,
	PermManageParticipants,
	PermExportData,
}

// ParsePermission validates a capability name.
func ParsePermission(s string) (Permission, bool) {
	for _, p := range AllPermissions {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// User is a staff account.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email,omitempty"`
	IsActive     bool         `json:"isActive"`
	IsSuperuser  bool         `json:"isSuperuser"`
	Permissions  []Permission `json:"permissions"`
	LastLoginAt  *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// HasPermission reports whether the user holds p. Superusers hold all.
func (u User) HasPermission(p Permission) bool {
	if u.IsSuperuser {
		return true
	}
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
