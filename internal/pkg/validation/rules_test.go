package validation

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	assert.NoError(t, Name("givenName", "Maria"))
	assert.ErrorIs(t, Name("givenName", "   "), apperrors.ErrValidationFailed)

	long := make([]byte, NameMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, Name("givenName", string(long)), apperrors.ErrValidationFailed)
}

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone("phone", ""))
	assert.NoError(t, Phone("phone", "+55 (11) 91234-5678"))
	assert.Error(t, Phone("phone", "call me"))
}

func TestDateBounds(t *testing.T) {
	today := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	assert.NoError(t, NotAfter("birthDate", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), today))
	assert.Error(t, NotAfter("birthDate", time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC), today))
	assert.NoError(t, NotBefore("date", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), today))
	assert.Error(t, NotBefore("date", time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC), today))
}

func TestRegisterCustomRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomRules(v))

	type form struct {
		Gender string `validate:"required,gender"`
		Phone  string `validate:"phone"`
	}
	assert.NoError(t, v.Struct(form{Gender: "F"}))
	assert.Error(t, v.Struct(form{Gender: "X"}))
	assert.Error(t, v.Struct(form{Gender: "M", Phone: "nope"}))
}
