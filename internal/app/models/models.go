package models

// Gender is stored as a single character, matching the registration form.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Label is the display label used in exports and the dashboard
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Masculino"
	case GenderFemale:
		return "Feminino"
	default:
		return string(g)
	}
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
