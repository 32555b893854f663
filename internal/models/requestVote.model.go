package models

import "github.com/google/uuid"

type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

func (v VoteType) IsValid() bool {
	return v == VoteUp || v == VoteDown
}

// RequestVote is one guest's live vote on one request. The unique index keeps
// it to at most one row per (request, guest); switching vote type updates the
// row in place.
type RequestVote struct {
	BaseUUIDModel
	RequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_votes_request_guest" json:"requestId"`
	GuestID   string    `gorm:"type:text;not null;uniqueIndex:idx_request_votes_request_guest" json:"guestId"`
	VoteType  VoteType  `gorm:"type:text;not null"                                             json:"voteType"`
}
