package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "organizations_pkey"}

	assert.True(t, IsDuplicateConstraintError(dup, "organizations_pkey"))
	assert.True(t, IsDuplicateConstraintError(fmt.Errorf("insert: %w", dup), "organizations_pkey"))
	assert.False(t, IsDuplicateConstraintError(dup, "other_key"))
	assert.False(t, IsDuplicateConstraintError(&pgconn.PgError{Code: "23503", ConstraintName: "organizations_pkey"}, "organizations_pkey"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "organizations_pkey"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: CodeDeadlockDetected}))
	assert.True(t, IsRetryable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: CodeSerializationFailure})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: CodeUniqueViolation}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
	assert.Equal(t, "", Code(nil))
}
