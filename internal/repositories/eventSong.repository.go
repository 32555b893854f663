package repositories

import (
	"context"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventSongRepository interface {
	IncrementOrInsert(ctx context.Context, song *EventSong) error
	TopByFrequency(ctx context.Context, eventCode string, limit int) ([]EventSong, error)
	TopRanked(ctx context.Context, eventCode string, limit int) ([]EventSong, error)
}

type eventSongRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEventSongRepository(db database.DB) EventSongRepository {
	return &eventSongRepository{
		db:  db,
		log: logger.New("eventSongRepository"),
	}
}

// IncrementOrInsert bumps the frequency counter for a track occurrence, or
// creates the aggregate row on first sight. The upsert is a single atomic
// statement so concurrent preference submissions never lose an occurrence.
// The aggregate lives only in the primary store; callers decide whether a
// failed increment matters, since the read side can recompute the ranking
// from mirrored preferences.
func (r *eventSongRepository) IncrementOrInsert(ctx context.Context, song *EventSong) error {
	log := r.log.Function("IncrementOrInsert")

	if song.Frequency == 0 {
		song.Frequency = 1
	}

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_code"},
			{Name: "track_id"},
			{Name: "track_name"},
			{Name: "artist_name"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"frequency": gorm.Expr("event_songs.frequency + 1"),
		}),
	}).Create(song).Error
	if err != nil {
		return log.Err("failed to increment song frequency", err,
			"eventCode", song.EventCode, "track", song.TrackName)
	}

	return nil
}

func (r *eventSongRepository) TopByFrequency(ctx context.Context, eventCode string, limit int) ([]EventSong, error) {
	log := r.log.Function("TopByFrequency")

	var songs []EventSong
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ?", eventCode).
		Order("frequency DESC").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, log.Err("failed to get top songs", err, "eventCode", eventCode)
	}

	return songs, nil
}

func (r *eventSongRepository) TopRanked(ctx context.Context, eventCode string, limit int) ([]EventSong, error) {
	log := r.log.Function("TopRanked")

	var songs []EventSong
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ?", eventCode).
		Order("frequency DESC, popularity DESC").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, log.Err("failed to get ranked songs", err, "eventCode", eventCode)
	}

	return songs, nil
}
