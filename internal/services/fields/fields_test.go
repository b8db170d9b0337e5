package fields

import (
	"testing"
	"time"

	"github.com/curaious/devboard/internal/perrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachVisitsKeysInOrder(t *testing.T) {
	var seen []string
	err := Set{"b": 1, "a": 2, "c": 3}.Each(func(key string, _ any) error {
		seen = append(seen, key)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestEachRejectsEmptySet(t *testing.T) {
	err := Set{}.Each(func(string, any) error { return nil })
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))
}

func TestOnly(t *testing.T) {
	assert.True(t, Set{"status": "completed"}.Only("status", "completed"))
	assert.False(t, Set{"status": "active"}.Only("status", "completed"))
	assert.False(t, Set{"status": "completed", "priority": "high"}.Only("status", "completed"))
	assert.False(t, Set{"status": true}.Only("status", "completed"))
	assert.False(t, Set{}.Only("status", "completed"))
}

func TestDecoders(t *testing.T) {
	s, err := String("name", "  Alpha ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", s)

	_, err = String("name", 12.0)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))

	_, err = RequiredString("name", "   ")
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))

	list, err := Strings("tech_stack", []any{"go", " postgres"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "postgres"}, list)

	_, err = Strings("tech_stack", []any{"go", 1.0})
	assert.Error(t, err)

	d, err := Time("expected_completion_date", "2026-11-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = Time("expected_completion_date", "next week")
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))

	id := uuid.New()
	got, err := UUID("developer_id", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = UUID("developer_id", "nope")
	assert.Error(t, err)
}

func TestOneOf(t *testing.T) {
	type priority string
	assert.NoError(t, OneOf("priority", priority("high"), "high", "low"))
	err := OneOf("priority", priority("urgent"), "high", "low")
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))
	assert.Contains(t, perrors.Message(err), "high, low")
}

func TestNotUpdatable(t *testing.T) {
	err := NotUpdatable("created_by")
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidInput))
	assert.Contains(t, perrors.Message(err), "created_by")
}
