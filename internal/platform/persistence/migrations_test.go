package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMigrations_InputValidation(t *testing.T) {
	t.Run("RejectsEmptyMigrationsPath", func(t *testing.T) {
		err := RunMigrations("postgres://test", "")
		assert.EqualError(t, err, "migrations path cannot be empty")
	})

	t.Run("RejectsEmptyDatabaseURL", func(t *testing.T) {
		err := RunMigrations("", "file://./migrations/postgres")
		assert.EqualError(t, err, "database URL cannot be empty")
	})

	// Only input validation is covered here; applying real migrations needs a database
}
