package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenGorm_SQLiteMigrates(t *testing.T) {
	db, err := OpenGorm(DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"customers", "flights", "seats", "bookings", "policies"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenGorm_UnknownDriver(t *testing.T) {
	_, err := OpenGorm("oracle", "whatever")
	assert.ErrorContains(t, err, "unsupported driver")
}
