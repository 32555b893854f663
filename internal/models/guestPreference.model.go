package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SourceManual  = "manual"
	SourceSpotify = "spotify"
)

// Track is one submitted track inside a guest's preference payload.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	PreviewURL *string  `json:"preview_url,omitempty"`
	DurationMs int      `json:"duration_ms,omitempty"`
}

// PrimaryArtist returns the first listed artist, or "Unknown Artist".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) > 0 && t.Artists[0] != "" {
		return t.Artists[0]
	}
	return "Unknown Artist"
}

// GuestPreference holds one guest's music taste for an event. A guest
// resubmitting preferences replaces the prior row for that (event, guest) pair.
type GuestPreference struct {
	BaseModel
	EventCode   string                      `gorm:"type:text;not null;uniqueIndex:idx_guest_preferences_event_guest" json:"eventCode"`
	GuestID     string                      `gorm:"type:text;not null;uniqueIndex:idx_guest_preferences_event_guest" json:"guestId"`
	Artists     datatypes.JSONSlice[string] `json:"artists"`
	Genres      datatypes.JSONSlice[string] `json:"genres"`
	Tracks      datatypes.JSONType[[]Track] `json:"tracks"`
	Source      string                      `gorm:"type:text;default:manual" json:"source"`
	SubmittedAt time.Time                   `json:"submittedAt"`
}
