package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassifiers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "event_days_event_date_key"}
	wrapped := fmt.Errorf("insert event day: %w", unique)

	assert.True(t, IsDuplicateConstraintError(wrapped, "event_days_event_date_key"))
	assert.True(t, IsDuplicateConstraintError(wrapped, ""))
	assert.False(t, IsDuplicateConstraintError(wrapped, "other"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), ""))

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, IsUndefinedFunction(fmt.Errorf("q: %w", &pgconn.PgError{Code: "42883"})))
	assert.False(t, IsUndefinedFunction(unique))
}
