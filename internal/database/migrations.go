package database

import (
	"qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.Event{},
		&models.GuestPreference{},
		&models.EventSong{},
		&models.SongRequest{},
		&models.RequestVote{},
		&models.RequestSettings{},
		&models.RequestMetric{},
		&models.EventSession{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Er("Failed to migrate model", err, "model", model)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_song_requests_queue_order ON song_requests(event_code, vote_count DESC, downvote_count ASC, submitted_at ASC)",
		"CREATE INDEX IF NOT EXISTS idx_event_songs_frequency ON event_songs(event_code, frequency DESC)",
		"CREATE INDEX IF NOT EXISTS idx_request_metrics_event_name ON request_metrics(event_code, metric_name)",
		"CREATE INDEX IF NOT EXISTS idx_event_sessions_activity ON event_sessions(is_active, last_activity)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
