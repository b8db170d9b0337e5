package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMigrationKeepsVersionsSorted(t *testing.T) {
	mg := &Migrator{versions: []string{}, migrations: map[string]*migration{}}

	for _, v := range []string{"20261001090300", "20261001090000", "20261001090400", "20261001090100"} {
		mg.addMigration(&migration{version: v})
	}

	assert.Equal(t, []string{"20261001090000", "20261001090100", "20261001090300", "20261001090400"}, mg.versions)
	assert.Len(t, mg.migrations, 4)
}

func TestRegisteredMigrations(t *testing.T) {
	for _, v := range []string{"20261001090000", "20261001090100", "20261001090200", "20261001090300", "20261001090400"} {
		mg, ok := m.migrations[v]
		if assert.True(t, ok, "migration %s is not registered", v) {
			assert.NotNil(t, mg.up)
			assert.NotNil(t, mg.down)
		}
	}
}

func TestReverse(t *testing.T) {
	assert.Equal(t, []string{"c", "b", "a"}, reverse([]string{"a", "b", "c"}))
	assert.Empty(t, reverse([]string{}))
}
