package models

// EventSong is the per-event aggregate of a track across every guest's
// submitted list. Frequency only ever increases; there is no removal path.
type EventSong struct {
	BaseModel
	EventCode  string `gorm:"type:text;not null;uniqueIndex:idx_event_songs_identity" json:"eventCode"`
	TrackID    string `gorm:"type:text;uniqueIndex:idx_event_songs_identity"          json:"trackId"`
	TrackName  string `gorm:"type:text;not null;uniqueIndex:idx_event_songs_identity" json:"trackName"`
	ArtistName string `gorm:"type:text;not null;uniqueIndex:idx_event_songs_identity" json:"artistName"`
	AlbumName  string `gorm:"type:text"                                               json:"albumName"`
	Popularity int    `gorm:"type:int;default:0"                                      json:"popularity"`
	Frequency  int    `gorm:"type:int;default:1"                                      json:"frequency"`
}
