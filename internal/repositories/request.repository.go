package repositories

import (
	"context"
	"errors"
	"strings"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	CreateTx(tx *gorm.DB, request *SongRequest, maxPerGuest int) error
	CreateFallback(ctx context.Context, request *SongRequest, maxPerGuest int) error
	Mirror(ctx context.Context, request *SongRequest)
	GetByID(ctx context.Context, eventCode string, id uuid.UUID) (*SongRequest, error)
	ListByEvent(ctx context.Context, eventCode string, filter RequestFilter) ([]SongRequest, error)
	ListByStatuses(ctx context.Context, eventCode string, statuses []RequestStatus) ([]SongRequest, error)
	Update(ctx context.Context, request *SongRequest) error
}

// RequestFilter narrows a request listing. Zero values mean no filtering.
type RequestFilter struct {
	Status  RequestStatus
	GuestID string
}

type requestRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRequestRepository(db database.DB) RequestRepository {
	return &requestRepository{
		db:  db,
		log: logger.New("requestRepository"),
	}
}

// CreateTx runs the per-guest quota check, the case-insensitive duplicate
// check, and the insert inside the caller's transaction so two concurrent
// submissions cannot both pass the checks and both insert.
func (r *requestRepository) CreateTx(tx *gorm.DB, request *SongRequest, maxPerGuest int) error {
	log := r.log.Function("CreateTx")

	var guestCount int64
	err := tx.Model(&SongRequest{}).
		Where("event_code = ? AND guest_id = ?", request.EventCode, request.GuestID).
		Count(&guestCount).Error
	if err != nil {
		return log.Err("failed to count guest requests", err, "eventCode", request.EventCode)
	}
	if guestCount >= int64(maxPerGuest) {
		return log.ErrorWithType(ErrQuotaExceeded, "guest request quota reached",
			"guestID", request.GuestID, "max", maxPerGuest)
	}

	var dupCount int64
	err = tx.Model(&SongRequest{}).
		Where("event_code = ? AND guest_id = ? AND LOWER(track_name) = ? AND LOWER(artist_name) = ?",
			request.EventCode,
			request.GuestID,
			strings.ToLower(request.TrackName),
			strings.ToLower(request.ArtistName)).
		Count(&dupCount).Error
	if err != nil {
		return log.Err("failed to check for duplicate request", err, "eventCode", request.EventCode)
	}
	if dupCount > 0 {
		return log.ErrorWithType(ErrDuplicateRequest, "guest already requested this track",
			"track", request.TrackName, "artist", request.ArtistName)
	}

	if err := tx.Create(request).Error; err != nil {
		return log.Err("failed to create song request", err, "eventCode", request.EventCode)
	}

	return nil
}

// CreateFallback is the write path of last resort when the primary store is
// down. The quota and duplicate checks run against a prefix scan of the
// fallback store; without a transaction around them they are best effort.
func (r *requestRepository) CreateFallback(ctx context.Context, request *SongRequest, maxPerGuest int) error {
	log := r.log.Function("CreateFallback")

	existing, err := scanFallback[SongRequest](ctx, r.db.Cache.Fallback,
		fallbackKey(fallbackEntityRequest, request.EventCode)+":")
	if err != nil {
		return log.Err("failed to scan fallback requests", err, "eventCode", request.EventCode)
	}

	guestCount := 0
	for _, req := range existing {
		if req.GuestID != request.GuestID {
			continue
		}
		guestCount++
		if strings.EqualFold(req.TrackName, request.TrackName) &&
			strings.EqualFold(req.ArtistName, request.ArtistName) {
			return log.ErrorWithType(ErrDuplicateRequest, "guest already requested this track",
				"track", request.TrackName)
		}
	}
	if guestCount >= maxPerGuest {
		return log.ErrorWithType(ErrQuotaExceeded, "guest request quota reached",
			"guestID", request.GuestID, "max", maxPerGuest)
	}

	key := fallbackKey(fallbackEntityRequest, request.EventCode, request.ID.String())
	if err := putFallback(ctx, r.db.Cache.Fallback, key, request); err != nil {
		return log.Err("failed to create request in both stores", err, "eventCode", request.EventCode)
	}

	log.Warn("song request written to fallback store only", "requestID", request.ID)
	return nil
}

// Mirror copies a request into the fallback store after a successful primary
// write. Failures are logged and swallowed.
func (r *requestRepository) Mirror(ctx context.Context, request *SongRequest) {
	key := fallbackKey(fallbackEntityRequest, request.EventCode, request.ID.String())
	mirrorFallback(ctx, r.db.Cache.Fallback, r.log.Function("Mirror"), key, request)
}

func (r *requestRepository) GetByID(ctx context.Context, eventCode string, id uuid.UUID) (*SongRequest, error) {
	log := r.log.Function("GetByID")

	var request SongRequest
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ? AND id = ?", eventCode, id).
		First(&request).Error
	if err == nil {
		return &request, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Er("primary store read failed, trying fallback store", err, "requestID", id)
	}

	key := fallbackKey(fallbackEntityRequest, eventCode, id.String())
	found, fbErr := getFallback(ctx, r.db.Cache.Fallback, key, &request)
	if fbErr != nil {
		return nil, log.Err("failed to read request from fallback store", fbErr, "requestID", id)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &request, nil
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventCode string, filter RequestFilter) ([]SongRequest, error) {
	log := r.log.Function("ListByEvent")

	query := r.db.SQLWithContext(ctx).Where("event_code = ?", eventCode)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.GuestID != "" {
		query = query.Where("guest_id = ?", filter.GuestID)
	}

	var requests []SongRequest
	err := query.
		Order("vote_count DESC, downvote_count ASC, submitted_at ASC").
		Find(&requests).Error
	if err == nil && len(requests) > 0 {
		return requests, nil
	}
	if err != nil {
		log.Er("primary store read failed, trying fallback store", err, "eventCode", eventCode)
	}

	fallback, fbErr := scanFallback[SongRequest](ctx, r.db.Cache.Fallback,
		fallbackKey(fallbackEntityRequest, eventCode)+":")
	if fbErr != nil {
		if err != nil {
			return nil, log.Err("failed to list requests from both stores", fbErr, "eventCode", eventCode)
		}
		return requests, nil
	}

	filtered := make([]SongRequest, 0, len(fallback))
	for _, req := range fallback {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.GuestID != "" && req.GuestID != filter.GuestID {
			continue
		}
		filtered = append(filtered, req)
	}
	SortRequests(filtered)

	return filtered, nil
}

func (r *requestRepository) ListByStatuses(ctx context.Context, eventCode string, statuses []RequestStatus) ([]SongRequest, error) {
	log := r.log.Function("ListByStatuses")

	var requests []SongRequest
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ? AND status IN ?", eventCode, statuses).
		Order("vote_count DESC, downvote_count ASC, submitted_at ASC").
		Find(&requests).Error
	if err == nil && len(requests) > 0 {
		return requests, nil
	}
	if err != nil {
		log.Er("primary store read failed, trying fallback store", err, "eventCode", eventCode)
	}

	fallback, fbErr := scanFallback[SongRequest](ctx, r.db.Cache.Fallback,
		fallbackKey(fallbackEntityRequest, eventCode)+":")
	if fbErr != nil {
		if err != nil {
			return nil, log.Err("failed to list requests from both stores", fbErr, "eventCode", eventCode)
		}
		return requests, nil
	}

	wanted := make(map[RequestStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	filtered := make([]SongRequest, 0, len(fallback))
	for _, req := range fallback {
		if wanted[req.Status] {
			filtered = append(filtered, req)
		}
	}
	SortRequests(filtered)

	return filtered, nil
}

func (r *requestRepository) Update(ctx context.Context, request *SongRequest) error {
	log := r.log.Function("Update")

	key := fallbackKey(fallbackEntityRequest, request.EventCode, request.ID.String())

	if err := r.db.SQLWithContext(ctx).Save(request).Error; err != nil {
		log.Er("primary store write failed, using fallback store", err, "requestID", request.ID)
		if fbErr := putFallback(ctx, r.db.Cache.Fallback, key, request); fbErr != nil {
			return log.Err("failed to update request in both stores", fbErr, "requestID", request.ID)
		}
		return nil
	}

	mirrorFallback(ctx, r.db.Cache.Fallback, log, key, request)
	return nil
}
