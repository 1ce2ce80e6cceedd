package database

import (
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestInstrumentQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:instrument_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, InstrumentQueries(db))
	require.NoError(t, db.AutoMigrate(&models.Tag{}))

	tag := models.Tag{Name: "Breakfast", Slug: "breakfast"}
	require.NoError(t, db.Create(&tag).Error)

	var loaded models.Tag
	require.NoError(t, db.First(&loaded, tag.ID).Error)

	// The create and query callbacks each observe a series for the tags table
	series := promtestutil.CollectAndCount(observability.DatabaseQueryLatency,
		"foodgram_database_query_latency_seconds")
	assert.GreaterOrEqual(t, series, 2)
}
