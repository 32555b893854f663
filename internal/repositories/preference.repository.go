package repositories

import (
	"context"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm/clause"
)

type PreferenceRepository interface {
	Upsert(ctx context.Context, preference *GuestPreference) error
	ListByEvent(ctx context.Context, eventCode string) ([]GuestPreference, error)
}

type preferenceRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPreferenceRepository(db database.DB) PreferenceRepository {
	return &preferenceRepository{
		db:  db,
		log: logger.New("preferenceRepository"),
	}
}

func (r *preferenceRepository) Upsert(ctx context.Context, preference *GuestPreference) error {
	log := r.log.Function("Upsert")

	key := fallbackKey(fallbackEntityPreference, preference.EventCode, preference.GuestID)

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_code"}, {Name: "guest_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"artists", "genres", "tracks", "source", "submitted_at", "updated_at",
		}),
	}).Create(preference).Error
	if err != nil {
		log.Er("primary store write failed, using fallback store", err,
			"eventCode", preference.EventCode, "guestID", preference.GuestID)
		if fbErr := putFallback(ctx, r.db.Cache.Fallback, key, preference); fbErr != nil {
			return log.Err("failed to upsert preferences in both stores", fbErr,
				"eventCode", preference.EventCode, "guestID", preference.GuestID)
		}
		return nil
	}

	mirrorFallback(ctx, r.db.Cache.Fallback, log, key, preference)
	return nil
}

func (r *preferenceRepository) ListByEvent(ctx context.Context, eventCode string) ([]GuestPreference, error) {
	log := r.log.Function("ListByEvent")

	var preferences []GuestPreference
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ?", eventCode).
		Find(&preferences).Error
	if err != nil {
		log.Er("primary store read failed, trying fallback store", err, "eventCode", eventCode)
	}
	if err == nil && len(preferences) > 0 {
		return preferences, nil
	}

	prefix := fallbackKey(fallbackEntityPreference, eventCode) + ":"
	fallbackPrefs, fbErr := scanFallback[GuestPreference](ctx, r.db.Cache.Fallback, prefix)
	if fbErr != nil {
		if err != nil {
			return nil, log.Err("failed to list preferences in both stores", fbErr, "eventCode", eventCode)
		}
		log.Er("fallback store scan failed", fbErr, "eventCode", eventCode)
		return preferences, nil
	}

	if len(fallbackPrefs) > 0 {
		return fallbackPrefs, nil
	}

	return preferences, nil
}
