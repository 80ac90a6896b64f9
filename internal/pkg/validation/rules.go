package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
)

const (
	NameMaxLength  = 100
	TitleMaxLength = 100
	ReasonMaxLen   = 200
	MinYear        = 2000
	MaxYear        = 2100
)

// PhonePattern accepts digits with optional +, spaces, dashes and parentheses.
var PhonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{8,20}$`)

// Name checks a required person or group name.
func Name(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > NameMaxLength {
		return apperrors.NewValidationError(field, field+" is too long")
	}
	return nil
}

// Phone checks an optional phone number.
func Phone(field, value string) error {
	if value == "" {
		return nil
	}
	if !PhonePattern.MatchString(value) {
		return apperrors.NewValidationError(field, field+" is not a valid phone number")
	}
	return nil
}

// NotAfter rejects a date later than limit (both compared as calendar days).
func NotAfter(field string, d, limit time.Time) error {
	if dateOnly(d).After(dateOnly(limit)) {
		return apperrors.NewValidationError(field, field+" cannot be in the future")
	}
	return nil
}

// NotBefore rejects a date earlier than limit.
func NotBefore(field string, d, limit time.Time) error {
	if dateOnly(d).Before(dateOnly(limit)) {
		return apperrors.NewValidationError(field, field+" cannot be in the past")
	}
	return nil
}

// Year checks an enrollment year is within the supported range.
func Year(year int) error {
	if year < MinYear || year > MaxYear {
		return apperrors.NewValidationError("year", "year is out of range")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RegisterCustomRules adds the "gender" and "phone" tags to v.
func RegisterCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "M" || s == "F"
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || PhonePattern.MatchString(s)
	})
}
