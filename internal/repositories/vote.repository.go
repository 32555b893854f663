package repositories

import (
	"context"
	"errors"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository interface {
	CastTx(tx *gorm.DB, eventCode string, requestID uuid.UUID, guestID string, voteType VoteType) (*SongRequest, error)
	CastFallback(ctx context.Context, eventCode string, requestID uuid.UUID, guestID string, voteType VoteType) (*SongRequest, error)
}

type voteRepository struct {
	db  database.DB
	log logger.Logger
}

func NewVoteRepository(db database.DB) VoteRepository {
	return &voteRepository{
		db:  db,
		log: logger.New("voteRepository"),
	}
}

// VoteTally is the pair of counters a vote transition acts on.
type VoteTally struct {
	Up   int
	Down int
}

// ApplyVoteTransition computes the tally change for an incoming vote given
// the guest's existing vote, if any. Repeating the same vote changes nothing;
// a new vote increments its counter; switching sides decrements the old
// counter (never below zero) and increments the new one.
func ApplyVoteTransition(existing *VoteType, incoming VoteType, tally VoteTally) (VoteTally, bool) {
	if existing != nil && *existing == incoming {
		return tally, false
	}

	if existing != nil {
		switch *existing {
		case VoteUp:
			if tally.Up > 0 {
				tally.Up--
			}
		case VoteDown:
			if tally.Down > 0 {
				tally.Down--
			}
		}
	}

	switch incoming {
	case VoteUp:
		tally.Up++
	case VoteDown:
		tally.Down++
	}

	return tally, true
}

// CastTx applies one guest's vote inside the caller's transaction. The
// request row is locked so the tally update and the vote row write land
// together; concurrent votes on the same request serialize on the lock.
func (r *voteRepository) CastTx(tx *gorm.DB, eventCode string, requestID uuid.UUID, guestID string, voteType VoteType) (*SongRequest, error) {
	log := r.log.Function("CastTx")

	var request SongRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_code = ? AND id = ?", eventCode, requestID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to load request for voting", err, "requestID", requestID)
	}

	var existingVote RequestVote
	var existingType *VoteType
	err = tx.Where("request_id = ? AND guest_id = ?", requestID, guestID).First(&existingVote).Error
	switch {
	case err == nil:
		existingType = &existingVote.VoteType
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, log.Err("failed to load existing vote", err, "requestID", requestID)
	}

	tally, changed := ApplyVoteTransition(existingType,
		voteType, VoteTally{Up: request.VoteCount, Down: request.DownvoteCount})
	if !changed {
		return &request, nil
	}

	if existingType != nil {
		existingVote.VoteType = voteType
		if err := tx.Save(&existingVote).Error; err != nil {
			return nil, log.Err("failed to switch vote", err, "requestID", requestID)
		}
	} else {
		vote := RequestVote{RequestID: requestID, GuestID: guestID, VoteType: voteType}
		if err := tx.Create(&vote).Error; err != nil {
			return nil, log.Err("failed to record vote", err, "requestID", requestID)
		}
	}

	request.VoteCount = tally.Up
	request.DownvoteCount = tally.Down
	if err := tx.Save(&request).Error; err != nil {
		return nil, log.Err("failed to update vote tallies", err, "requestID", requestID)
	}

	return &request, nil
}

// CastFallback applies a vote against the fallback store when the primary is
// down: read the mirrored request and the guest's mirrored vote, run the same
// transition, write both back. Without a transaction this is best effort.
func (r *voteRepository) CastFallback(ctx context.Context, eventCode string, requestID uuid.UUID, guestID string, voteType VoteType) (*SongRequest, error) {
	log := r.log.Function("CastFallback")

	requestKey := fallbackKey(fallbackEntityRequest, eventCode, requestID.String())
	var request SongRequest
	found, err := getFallback(ctx, r.db.Cache.Fallback, requestKey, &request)
	if err != nil {
		return nil, log.Err("failed to read request from fallback store", err, "requestID", requestID)
	}
	if !found {
		return nil, ErrNotFound
	}

	voteKey := fallbackKey(fallbackEntityVote, eventCode, requestID.String(), guestID)
	var existingVote RequestVote
	var existingType *VoteType
	voteFound, err := getFallback(ctx, r.db.Cache.Fallback, voteKey, &existingVote)
	if err != nil {
		return nil, log.Err("failed to read vote from fallback store", err, "requestID", requestID)
	}
	if voteFound {
		existingType = &existingVote.VoteType
	}

	tally, changed := ApplyVoteTransition(existingType,
		voteType, VoteTally{Up: request.VoteCount, Down: request.DownvoteCount})
	if !changed {
		return &request, nil
	}

	vote := RequestVote{RequestID: requestID, GuestID: guestID, VoteType: voteType}
	if err := putFallback(ctx, r.db.Cache.Fallback, voteKey, &vote); err != nil {
		return nil, log.Err("failed to write vote to fallback store", err, "requestID", requestID)
	}

	request.VoteCount = tally.Up
	request.DownvoteCount = tally.Down
	if err := putFallback(ctx, r.db.Cache.Fallback, requestKey, &request); err != nil {
		return nil, log.Err("failed to write tallies to fallback store", err, "requestID", requestID)
	}

	log.Warn("vote applied in fallback store only", "requestID", requestID, "guestID", guestID)
	return &request, nil
}
