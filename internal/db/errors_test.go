package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapErrorPassesThrough(t *testing.T) {
	for _, e := range []error{
		fmt.Errorf("foo"),
		errors.New("bar"),
		sql.ErrNoRows,
		&pq.Error{Code: "23503"},
	} {
		assert.Equal(t, e, WrapError(e))
	}
	assert.NoError(t, WrapError(nil))
}

func TestWrapErrorUniqueViolation(t *testing.T) {
	err := fmt.Errorf("failed to create team: %w", &pq.Error{Code: "23505", Constraint: "teams_manager_id_name_key"})

	assert.Equal(t, ErrDuplicateKey, WrapError(err))
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsDuplicateKey(sql.ErrNoRows))
}
