package repositories

import (
	"context"
	"errors"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByCode(ctx context.Context, code string) (*Event, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type eventRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEventRepository(db database.DB) EventRepository {
	return &eventRepository{
		db:  db,
		log: logger.New("eventRepository"),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *Event) error {
	log := r.log.Function("Create")

	key := fallbackKey(fallbackEntityEvent, event.Code)

	if err := r.db.SQLWithContext(ctx).Create(event).Error; err != nil {
		log.Er("primary store write failed, using fallback store", err, "code", event.Code)
		if fbErr := putFallback(ctx, r.db.Cache.Fallback, key, event); fbErr != nil {
			return log.Err("failed to create event in both stores", fbErr, "code", event.Code)
		}
		return nil
	}

	mirrorFallback(ctx, r.db.Cache.Fallback, log, key, event)
	return nil
}

func (r *eventRepository) GetByCode(ctx context.Context, code string) (*Event, error) {
	log := r.log.Function("GetByCode")

	var event Event
	err := r.db.SQLWithContext(ctx).First(&event, "code = ?", code).Error
	if err == nil {
		return &event, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Er("primary store read failed, trying fallback store", err, "code", code)
	}

	found, fbErr := getFallback(ctx, r.db.Cache.Fallback, fallbackKey(fallbackEntityEvent, code), &event)
	if fbErr != nil {
		log.Er("fallback store read failed", fbErr, "code", code)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &event, nil
}

func (r *eventRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	log := r.log.Function("CodeExists")

	var count int64
	err := r.db.SQLWithContext(ctx).Model(&Event{}).Where("code = ?", code).Count(&count).Error
	if err == nil {
		return count > 0, nil
	}
	log.Er("primary store count failed, checking fallback store", err, "code", code)

	var event Event
	found, fbErr := getFallback(ctx, r.db.Cache.Fallback, fallbackKey(fallbackEntityEvent, code), &event)
	if fbErr != nil {
		return false, log.Err("failed to check event code in both stores", fbErr, "code", code)
	}

	return found, nil
}
