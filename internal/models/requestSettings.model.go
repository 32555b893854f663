package models

import "gorm.io/datatypes"

const DefaultMaxRequestsPerGuest = 10

// RequestSettings holds per-event toggles for the request system. Absence of a
// row means "everything enabled, quota 10"; see DefaultRequestSettings.
// GenreRestrictions/ArtistRestrictions and the vote thresholds are stored but
// not yet enforced anywhere.
type RequestSettings struct {
	BaseModel
	EventCode           string                      `gorm:"type:text;not null;uniqueIndex" json:"eventCode"`
	RequestsEnabled     bool                        `gorm:"type:bool;default:true"         json:"requestsEnabled"`
	VotingEnabled       bool                        `gorm:"type:bool;default:true"         json:"votingEnabled"`
	PaidRequestsEnabled bool                        `gorm:"type:bool;default:false"        json:"paidRequestsEnabled"`
	GenreRestrictions   datatypes.JSONSlice[string] `json:"genreRestrictions"`
	ArtistRestrictions  datatypes.JSONSlice[string] `json:"artistRestrictions"`
	OpenTime            *string                     `gorm:"type:text"                      json:"openTime"`
	CloseTime           *string                     `gorm:"type:text"                      json:"closeTime"`
	MinVoteThreshold    int                         `gorm:"type:int;default:0"             json:"minVoteThreshold"`
	MaxRequestsPerGuest int                         `gorm:"type:int;default:10"            json:"maxRequestsPerGuest"`
	AutoAcceptThreshold int                         `gorm:"type:int;default:5"             json:"autoAcceptThreshold"`
}

// DefaultRequestSettings returns the implicit settings used when an event has
// no stored row.
func DefaultRequestSettings(eventCode string) RequestSettings {
	return RequestSettings{
		EventCode:           eventCode,
		RequestsEnabled:     true,
		VotingEnabled:       true,
		PaidRequestsEnabled: false,
		GenreRestrictions:   datatypes.JSONSlice[string]{},
		ArtistRestrictions:  datatypes.JSONSlice[string]{},
		MinVoteThreshold:    0,
		MaxRequestsPerGuest: DefaultMaxRequestsPerGuest,
		AutoAcceptThreshold: 5,
	}
}
