package repositories

import (
	"context"
	"time"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	Touch(ctx context.Context, eventCode, userID string, sessionType SessionType)
	DeactivateStale(ctx context.Context, idleFor time.Duration) (int64, error)
}

type sessionRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSessionRepository(db database.DB) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: logger.New("sessionRepository"),
	}
}

// Touch upserts the session row for one user on one event, marking it active
// and stamping the activity time. Session tracking is best effort; failures
// never affect the request that triggered the touch.
func (r *sessionRepository) Touch(ctx context.Context, eventCode, userID string, sessionType SessionType) {
	log := r.log.Function("Touch")

	session := EventSession{
		EventCode:    eventCode,
		UserID:       userID,
		SessionType:  sessionType,
		IsActive:     true,
		LastActivity: time.Now(),
	}

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_code"},
			{Name: "user_id"},
			{Name: "session_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "last_activity", "updated_at"}),
	}).Create(&session).Error
	if err != nil {
		log.Er("failed to touch session", err, "eventCode", eventCode, "userID", userID)
	}
}

// DeactivateStale marks sessions inactive once they have gone idleFor without
// activity. Called from the scheduler.
func (r *sessionRepository) DeactivateStale(ctx context.Context, idleFor time.Duration) (int64, error) {
	log := r.log.Function("DeactivateStale")

	cutoff := time.Now().Add(-idleFor)
	result := r.db.SQLWithContext(ctx).Model(&EventSession{}).
		Where("is_active = ? AND last_activity < ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return 0, log.Err("failed to deactivate stale sessions", result.Error)
	}

	return result.RowsAffected, nil
}
