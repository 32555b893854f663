package songController

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"qrate/config"
	"qrate/internal/database"
	"qrate/internal/events"
	. "qrate/internal/models"
	"qrate/internal/repositories"
	"qrate/internal/services"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	topSongsLimit   = 15
	sessionPoolRank = 50
	sessionPoolSize = 10
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type SongController struct {
	eventRepo      repositories.EventRepository
	preferenceRepo repositories.PreferenceRepository
	eventSongRepo  repositories.EventSongRepository
	sessionRepo    repositories.SessionRepository
	eventBus       *events.EventBus
	db             database.DB
	Config         config.Config
}

type SubmitPreferencesRequest struct {
	GuestID string   `json:"guestId,omitempty"`
	Artists []string `json:"artists,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Tracks  []Track  `json:"tracks,omitempty"`
	Source  string   `json:"source,omitempty"`
}

type SubmitPreferencesResponse struct {
	GuestID string `json:"guestId"`
}

// RankedSong is one entry of the top-songs and session-pool listings.
type RankedSong struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Frequency  int    `json:"frequency"`
	Popularity int    `json:"popularity"`
}

type SongControllerInterface interface {
	SubmitPreferences(ctx context.Context, code string, request *SubmitPreferencesRequest) (*SubmitPreferencesResponse, error)
	TopSongs(ctx context.Context, code string) ([]RankedSong, error)
	SessionPool(ctx context.Context, code string) ([]RankedSong, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) SongControllerInterface {
	return &SongController{
		eventRepo:      repos.Event,
		preferenceRepo: repos.Preference,
		eventSongRepo:  repos.EventSong,
		sessionRepo:    repos.Session,
		eventBus:       eventBus,
		db:             db,
		Config:         config,
	}
}

// SubmitPreferences stores or replaces one guest's taste payload and feeds
// each submitted track into the event's frequency aggregate. A guest without
// an ID gets one assigned and returned so the client can resubmit later.
func (c *SongController) SubmitPreferences(ctx context.Context, code string, request *SubmitPreferencesRequest) (*SubmitPreferencesResponse, error) {
	log := logger.NewWithContext(ctx, "songController").Function("SubmitPreferences")

	code = NormalizeEventCode(code)

	if _, err := c.eventRepo.GetByCode(ctx, code); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "event not found", "code", code)
		}
		return nil, log.Err("failed to verify event", err, "code", code)
	}

	guestID := request.GuestID
	if guestID == "" {
		guestID = "guest_" + uuid.NewString()
	}

	c.sessionRepo.Touch(ctx, code, guestID, SessionGuest)

	source := request.Source
	if source == "" {
		source = SourceManual
	}

	preference := &GuestPreference{
		EventCode:   code,
		GuestID:     guestID,
		Artists:     datatypes.NewJSONSlice(request.Artists),
		Genres:      datatypes.NewJSONSlice(request.Genres),
		Tracks:      datatypes.NewJSONType(request.Tracks),
		Source:      source,
		SubmittedAt: time.Now(),
	}

	if err := c.preferenceRepo.Upsert(ctx, preference); err != nil {
		return nil, log.Err("failed to save preferences", err, "code", code, "guestID", guestID)
	}

	for _, track := range request.Tracks {
		song := &EventSong{
			EventCode:  code,
			TrackID:    track.ID,
			TrackName:  track.Name,
			ArtistName: track.PrimaryArtist(),
			AlbumName:  track.Album,
			Popularity: track.Popularity,
		}
		if err := c.eventSongRepo.IncrementOrInsert(ctx, song); err != nil {
			log.Er("failed to update song aggregate, ranking will be folded on read", err,
				"code", code, "track", track.Name)
		}
	}

	c.eventBus.PublishAnalytics(events.PREFERENCES_SAVED, code, map[string]any{
		"guestId":    guestID,
		"trackCount": len(request.Tracks),
		"source":     source,
	})

	log.Info("Preferences saved", "code", code, "guestID", guestID, "tracks", len(request.Tracks))
	return &SubmitPreferencesResponse{GuestID: guestID}, nil
}

// TopSongs returns the event's 15 most submitted tracks. When the stored
// aggregate has nothing, the same ranking is folded on the fly from
// Spotify-sourced preference payloads.
func (c *SongController) TopSongs(ctx context.Context, code string) ([]RankedSong, error) {
	log := logger.NewWithContext(ctx, "songController").Function("TopSongs")

	code = NormalizeEventCode(code)

	songs, err := c.eventSongRepo.TopByFrequency(ctx, code, topSongsLimit)
	if err != nil {
		log.Er("failed to load song aggregate, folding preferences", err, "code", code)
	}
	if len(songs) == 0 {
		songs, err = c.foldFromPreferences(ctx, code, topSongsLimit)
		if err != nil {
			return nil, log.Err("failed to aggregate top songs", err, "code", code)
		}
	}

	return toRankedSongs(songs), nil
}

// SessionPool returns a randomized sample of up to 10 distinct tracks drawn
// from the event's top 50, so guest-facing screens can rotate through crowd
// favorites without always showing the same head of the list.
func (c *SongController) SessionPool(ctx context.Context, code string) ([]RankedSong, error) {
	log := logger.NewWithContext(ctx, "songController").Function("SessionPool")

	code = NormalizeEventCode(code)

	ranked, err := c.eventSongRepo.TopRanked(ctx, code, sessionPoolRank)
	if err != nil {
		log.Er("failed to load song aggregate, folding preferences", err, "code", code)
	}
	if len(ranked) == 0 {
		ranked, err = c.foldFromPreferences(ctx, code, sessionPoolRank)
		if err != nil {
			return nil, log.Err("failed to aggregate session pool", err, "code", code)
		}
	}

	sampled := SampleDistinct(ranked, sessionPoolSize, rand.Intn)
	return toRankedSongs(sampled), nil
}

func (c *SongController) foldFromPreferences(ctx context.Context, code string, limit int) ([]EventSong, error) {
	preferences, err := c.preferenceRepo.ListByEvent(ctx, code)
	if err != nil {
		return nil, err
	}

	spotifySourced := make([]GuestPreference, 0, len(preferences))
	for _, pref := range preferences {
		if pref.Source == SourceSpotify && len(pref.Tracks.Data()) > 0 {
			spotifySourced = append(spotifySourced, pref)
		}
	}

	return FoldPreferenceTracks(spotifySourced, limit), nil
}

func toRankedSongs(songs []EventSong) []RankedSong {
	ranked := make([]RankedSong, 0, len(songs))
	for _, song := range songs {
		ranked = append(ranked, RankedSong{
			ID:         song.TrackID,
			Title:      song.TrackName,
			Artist:     song.ArtistName,
			Album:      song.AlbumName,
			Frequency:  song.Frequency,
			Popularity: song.Popularity,
		})
	}
	return ranked
}

// SampleDistinct rejection-samples up to want songs with distinct
// (trackId, artist) keys from pool. The attempt cap keeps the loop finite
// when the picker keeps landing on already sampled keys; an in-order sweep
// then fills whatever the cap left short, so the result always holds
// min(want, distinct keys) songs. pick is injected so tests can drive the
// randomness.
func SampleDistinct(pool []EventSong, want int, pick func(n int) int) []EventSong {
	if len(pool) == 0 {
		return []EventSong{}
	}

	type poolKey struct {
		trackID string
		artist  string
	}

	if want > len(pool) {
		want = len(pool)
	}

	sampled := make([]EventSong, 0, want)
	seen := make(map[poolKey]bool)
	maxAttempts := len(pool) * 10
	for attempts := 0; len(sampled) < want && attempts < maxAttempts; attempts++ {
		candidate := pool[pick(len(pool))]
		key := poolKey{trackID: candidate.TrackID, artist: candidate.ArtistName}
		if !seen[key] {
			sampled = append(sampled, candidate)
			seen[key] = true
		}
		if len(seen) >= len(pool) {
			break
		}
	}

	for _, candidate := range pool {
		if len(sampled) >= want {
			break
		}
		key := poolKey{trackID: candidate.TrackID, artist: candidate.ArtistName}
		if !seen[key] {
			sampled = append(sampled, candidate)
			seen[key] = true
		}
	}

	return sampled
}
