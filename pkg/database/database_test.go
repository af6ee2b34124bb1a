package database

import (
	"testing"

	"github.com/Eursukkul/gym-reservation/config"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigratesSchema(t *testing.T) {
	db := Open(&config.Config{DBDriver: "sqlite", SQLitePath: "file:database_open?mode=memory&cache=shared"})

	assert.True(t, db.Migrator().HasTable(&models.Reservation{}))
	assert.True(t, db.Migrator().HasTable(&models.TimeSlot{}))
	assert.True(t, db.Migrator().HasIndex(&models.Reservation{}, "idx_reservation_slot"))

	require.NoError(t, db.Create(&models.TimeSlot{Time: "10:00", MaxCapacity: 5}).Error)
	var ts models.TimeSlot
	require.NoError(t, db.First(&ts, "slot_time = ?", "10:00").Error)
	assert.Equal(t, 5, ts.MaxCapacity)
}
