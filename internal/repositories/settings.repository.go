package repositories

import (
	"context"
	"errors"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context, eventCode string) (*RequestSettings, error)
	Upsert(ctx context.Context, settings *RequestSettings) error
}

type settingsRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSettingsRepository(db database.DB) SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: logger.New("settingsRepository"),
	}
}

// Get returns the event's stored settings, falling back to the mirror and
// finally to the implicit defaults. Never returns ErrNotFound; an event with
// no row simply has default settings.
func (r *settingsRepository) Get(ctx context.Context, eventCode string) (*RequestSettings, error) {
	log := r.log.Function("Get")

	var settings RequestSettings
	err := r.db.SQLWithContext(ctx).First(&settings, "event_code = ?", eventCode).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Er("primary store read failed, trying fallback store", err, "eventCode", eventCode)
	}

	key := fallbackKey(fallbackEntitySettings, eventCode)
	found, fbErr := getFallback(ctx, r.db.Cache.Fallback, key, &settings)
	if fbErr != nil {
		log.Er("fallback store read failed", fbErr, "eventCode", eventCode)
	}
	if found {
		return &settings, nil
	}

	defaults := DefaultRequestSettings(eventCode)
	return &defaults, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *RequestSettings) error {
	log := r.log.Function("Upsert")

	key := fallbackKey(fallbackEntitySettings, settings.EventCode)

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requests_enabled", "voting_enabled", "paid_requests_enabled",
			"genre_restrictions", "artist_restrictions", "open_time", "close_time",
			"min_vote_threshold", "max_requests_per_guest", "auto_accept_threshold",
			"updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		log.Er("primary store write failed, using fallback store", err, "eventCode", settings.EventCode)
		if fbErr := putFallback(ctx, r.db.Cache.Fallback, key, settings); fbErr != nil {
			return log.Err("failed to save settings in both stores", fbErr, "eventCode", settings.EventCode)
		}
		return nil
	}

	mirrorFallback(ctx, r.db.Cache.Fallback, log, key, settings)
	return nil
}
