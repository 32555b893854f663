package repositories

import (
	"errors"

	"qrate/internal/database"
)

// Sentinel errors shared by all repositories. Policy errors surface to the
// caller; storage errors trigger the fallback-store path instead.
var (
	ErrNotFound         = errors.New("record not found")
	ErrQuotaExceeded    = errors.New("request quota exceeded")
	ErrDuplicateRequest = errors.New("duplicate request")
)

type Repository struct {
	Event      EventRepository
	Preference PreferenceRepository
	EventSong  EventSongRepository
	Request    RequestRepository
	Vote       VoteRepository
	Settings   SettingsRepository
	Analytics  AnalyticsRepository
	Session    SessionRepository
}

func New(db database.DB) Repository {
	return Repository{
		Event:      NewEventRepository(db),
		Preference: NewPreferenceRepository(db),
		EventSong:  NewEventSongRepository(db),
		Request:    NewRequestRepository(db),
		Vote:       NewVoteRepository(db),
		Settings:   NewSettingsRepository(db),
		Analytics:  NewAnalyticsRepository(db),
		Session:    NewSessionRepository(db),
	}
}
