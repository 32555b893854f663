package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
	StatusQueued   RequestStatus = "queued"
	StatusPlayed   RequestStatus = "played"
)

// IsValid reports whether s is one of the known request statuses. The update
// path validates the value but deliberately does not enforce transition order.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusQueued, StatusPlayed:
		return true
	}
	return false
}

// TrackAnalysis is the synthetic metadata blob derived once at request
// creation. Values are hash-derived stand-ins, not real audio analysis.
type TrackAnalysis struct {
	BPM          int      `json:"bpm"`
	Key          string   `json:"key"`
	Energy       int      `json:"energy"`
	Danceability int      `json:"danceability"`
	Genre        []string `json:"genre"`
}

// SongRequest is a track a guest asked the host to play.
type SongRequest struct {
	BaseUUIDModel
	EventCode     string                            `gorm:"type:text;not null;index:idx_song_requests_event" json:"eventCode"`
	GuestID       string                            `gorm:"type:text;not null;index:idx_song_requests_event_guest" json:"guestId"`
	TrackID       *string                           `gorm:"type:text" json:"trackId"`
	TrackName     string                            `gorm:"type:text;not null" json:"trackName"`
	ArtistName    string                            `gorm:"type:text;not null" json:"artistName"`
	AlbumName     *string                           `gorm:"type:text" json:"albumName"`
	PreviewURL    *string                           `gorm:"type:text" json:"previewUrl"`
	DurationMs    *int                              `gorm:"type:int" json:"durationMs"`
	Status        RequestStatus                     `gorm:"type:text;default:pending;index" json:"status"`
	VoteCount     int                               `gorm:"type:int;default:0" json:"voteCount"`
	DownvoteCount int                               `gorm:"type:int;default:0" json:"downvoteCount"`
	TipAmount     decimal.Decimal                   `gorm:"type:numeric(10,2);default:0" json:"tipAmount"`
	RequesterName *string                           `gorm:"type:text" json:"requesterName"`
	SubmittedAt   time.Time                         `json:"submittedAt"`
	PlayedAt      *time.Time                        `json:"playedAt"`
	Metadata      datatypes.JSONType[TrackAnalysis] `json:"metadata"`
}

// SortRequests orders requests the way every listing surface does: most
// upvoted first, fewer downvotes breaking ties, then oldest submission.
func SortRequests(requests []SongRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].VoteCount != requests[j].VoteCount {
			return requests[i].VoteCount > requests[j].VoteCount
		}
		if requests[i].DownvoteCount != requests[j].DownvoteCount {
			return requests[i].DownvoteCount < requests[j].DownvoteCount
		}
		return requests[i].SubmittedAt.Before(requests[j].SubmittedAt)
	})
}
