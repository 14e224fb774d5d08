package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url  string
		want database.Driver
	}{
		{"", database.DriverSQLite},
		{":memory:", database.DriverSQLite},
		{"daybreak.db", database.DriverSQLite},
		{"data.sqlite", database.DriverSQLite},
		{"data.sqlite3", database.DriverSQLite},
		{"sqlite:///var/lib/daybreak/data.db", database.DriverSQLite},
		{"file:data.db", database.DriverSQLite},
		{"postgres://localhost:5432/daybreak", database.DriverPostgres},
		{"postgresql://localhost:5432/daybreak", database.DriverPostgres},
		{"host=localhost dbname=daybreak", database.DriverPostgres},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, database.DetectDriver(tt.url), "url %q", tt.url)
	}
}

func TestRebind(t *testing.T) {
	query := `SELECT * FROM tasks WHERE user_id = ? AND status IN (?, ?)`

	assert.Equal(t, query, database.Rebind(database.DriverSQLite, query))
	assert.Equal(t,
		`SELECT * FROM tasks WHERE user_id = $1 AND status IN ($2, $3)`,
		database.Rebind(database.DriverPostgres, query),
	)
}

func TestDriverIsValid(t *testing.T) {
	assert.True(t, database.DriverPostgres.IsValid())
	assert.True(t, database.DriverSQLite.IsValid())
	assert.False(t, database.Driver("oracle").IsValid())
}
