package models

import "time"

type SessionType string

const (
	SessionHost  SessionType = "host"
	SessionDJ    SessionType = "dj"
	SessionGuest SessionType = "guest"
)

func (s SessionType) IsValid() bool {
	return s == SessionHost || s == SessionDJ || s == SessionGuest
}

// EventSession tracks who is currently active on an event. Upserted on reads
// and preference submissions; the scheduler sweeps stale rows inactive.
type EventSession struct {
	BaseModel
	EventCode    string      `gorm:"type:text;not null;uniqueIndex:idx_event_sessions_identity" json:"eventCode"`
	UserID       string      `gorm:"type:text;not null;uniqueIndex:idx_event_sessions_identity" json:"userId"`
	SessionType  SessionType `gorm:"type:text;not null;uniqueIndex:idx_event_sessions_identity" json:"sessionType"`
	IsActive     bool        `gorm:"type:bool;default:true"                                     json:"isActive"`
	LastActivity time.Time   `json:"lastActivity"`
}
