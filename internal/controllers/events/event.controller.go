package eventController

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"qrate/config"
	"qrate/internal/database"
	"qrate/internal/events"
	. "qrate/internal/models"
	"qrate/internal/repositories"
	"qrate/internal/services"
	logger "github.com/Bparsons0904/goLogger"
)

const (
	codeAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	codeLength       = 6
	maxCodeAttempts  = 10
	topGenreLimit    = 5
	topArtistLimit   = 10
	recommendedLimit = 15
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type EventController struct {
	eventRepo      repositories.EventRepository
	preferenceRepo repositories.PreferenceRepository
	eventSongRepo  repositories.EventSongRepository
	sessionRepo    repositories.SessionRepository
	eventBus       *events.EventBus
	db             database.DB
	Config         config.Config
}

type CreateEventRequest struct {
	Name        string  `json:"name"`
	Theme       string  `json:"theme"`
	Description string  `json:"description,omitempty"`
	Code        string  `json:"code,omitempty"`
	Date        string  `json:"date,omitempty"`
	Time        string  `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// EventDetail is the event plus every guest's submitted preferences.
type EventDetail struct {
	Event       *Event            `json:"event"`
	Preferences []GuestPreference `json:"preferences"`
}

type GenreInsight struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type ArtistInsight struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TrackRecommendation struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album"`
	MatchScore int      `json:"matchScore"`
	Reasons    []string `json:"reasons"`
}

type CrowdInsights struct {
	TotalGuests     int                   `json:"totalGuests"`
	TopGenres       []GenreInsight        `json:"topGenres"`
	TopArtists      []ArtistInsight       `json:"topArtists"`
	Recommendations []TrackRecommendation `json:"recommendations"`
}

type EventControllerInterface interface {
	CreateEvent(ctx context.Context, request *CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, code, userID string, sessionType SessionType) (*EventDetail, error)
	GetInsights(ctx context.Context, code string) (*CrowdInsights, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) EventControllerInterface {
	return &EventController{
		eventRepo:      repos.Event,
		preferenceRepo: repos.Preference,
		eventSongRepo:  repos.EventSong,
		sessionRepo:    repos.Session,
		eventBus:       eventBus,
		db:             db,
		Config:         config,
	}
}

func generateEventCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return strings.ToUpper(string(code))
}

// CreateEvent creates an event under a fresh shareable code. A caller-supplied
// code that is already taken returns the existing event rather than an error,
// so re-posting a creation form is harmless. Generated codes retry on
// collision a bounded number of times.
func (c *EventController) CreateEvent(ctx context.Context, request *CreateEventRequest) (*Event, error) {
	log := logger.NewWithContext(ctx, "eventController").Function("CreateEvent")

	if strings.TrimSpace(request.Name) == "" || strings.TrimSpace(request.Theme) == "" {
		return nil, log.ErrorWithType(ErrValidation, "event name and theme are required")
	}

	callerSupplied := request.Code != ""
	code := NormalizeEventCode(request.Code)
	if !callerSupplied {
		code = generateEventCode()
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		exists, err := c.eventRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, log.Err("failed to check event code", err, "code", code)
		}
		if !exists {
			break
		}
		if callerSupplied {
			existing, err := c.eventRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, log.Err("failed to load existing event", err, "code", code)
			}
			log.Info("Returning existing event for requested code", "code", code)
			return existing, nil
		}
		code = generateEventCode()
	}

	now := time.Now()
	event := &Event{
		Name:        strings.TrimSpace(request.Name),
		Theme:       request.Theme,
		Description: strings.TrimSpace(request.Description),
		Code:        code,
		Date:        request.Date,
		Time:        request.Time,
		Location:    request.Location,
		IsActive:    true,
	}
	if event.Date == "" {
		event.Date = now.Format("2006-01-02")
	}
	if event.Time == "" {
		event.Time = now.Format("15:04")
	}
	if event.Location != nil {
		trimmed := strings.TrimSpace(*event.Location)
		if trimmed == "" {
			event.Location = nil
		} else {
			event.Location = &trimmed
		}
	}

	if err := c.eventRepo.Create(ctx, event); err != nil {
		return nil, log.Err("failed to create event", err, "code", code)
	}

	c.eventBus.PublishAnalytics(events.EVENT_CREATED, code, map[string]any{
		"name":  event.Name,
		"theme": event.Theme,
	})

	log.Info("Event created", "code", code, "name", event.Name)
	return event, nil
}

// GetEvent looks up an event and bundles every guest preference with it. The
// caller's session is touched as a side effect so the host can see who is
// active.
func (c *EventController) GetEvent(ctx context.Context, code, userID string, sessionType SessionType) (*EventDetail, error) {
	log := logger.NewWithContext(ctx, "eventController").Function("GetEvent")

	code = NormalizeEventCode(code)
	if code == "" {
		return nil, log.ErrorWithType(ErrValidation, "event code is required")
	}

	if userID == "" {
		userID = "anonymous"
	}
	if !sessionType.IsValid() {
		sessionType = SessionGuest
	}
	c.sessionRepo.Touch(ctx, code, userID, sessionType)

	event, err := c.eventRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "event not found", "code", code)
		}
		return nil, log.Err("failed to load event", err, "code", code)
	}

	preferences, err := c.preferenceRepo.ListByEvent(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load preferences", err, "code", code)
	}

	return &EventDetail{Event: event, Preferences: preferences}, nil
}

// GetInsights summarizes the crowd's taste from Spotify-sourced preferences:
// top genres with share of guests, top artists, and track recommendations
// derived from the frequency aggregate.
func (c *EventController) GetInsights(ctx context.Context, code string) (*CrowdInsights, error) {
	log := logger.NewWithContext(ctx, "eventController").Function("GetInsights")

	code = NormalizeEventCode(code)

	all, err := c.preferenceRepo.ListByEvent(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load preferences", err, "code", code)
	}

	preferences := make([]GuestPreference, 0, len(all))
	for _, pref := range all {
		if pref.Source == SourceSpotify {
			preferences = append(preferences, pref)
		}
	}

	insights := &CrowdInsights{
		TotalGuests:     len(preferences),
		TopGenres:       []GenreInsight{},
		TopArtists:      []ArtistInsight{},
		Recommendations: []TrackRecommendation{},
	}
	if len(preferences) == 0 {
		return insights, nil
	}

	insights.TopGenres, insights.TopArtists = buildTasteProfile(preferences)

	songs, err := c.eventSongRepo.TopByFrequency(ctx, code, recommendedLimit)
	if err != nil {
		log.Er("failed to load song aggregate, folding preferences", err, "code", code)
	}
	if len(songs) == 0 {
		songs = FoldPreferenceTracks(preferences, recommendedLimit)
	}
	insights.Recommendations = buildRecommendations(songs)

	return insights, nil
}

// buildTasteProfile counts genre and artist mentions across preferences.
// Genre percentage is share of guests mentioning it, not share of mentions.
func buildTasteProfile(preferences []GuestPreference) ([]GenreInsight, []ArtistInsight) {
	genreCounts := make(map[string]int)
	artistCounts := make(map[string]int)
	for _, pref := range preferences {
		for _, genre := range pref.Genres {
			genreCounts[genre]++
		}
		for _, artist := range pref.Artists {
			artistCounts[artist]++
		}
	}

	genres := make([]GenreInsight, 0, len(genreCounts))
	for name, count := range genreCounts {
		genres = append(genres, GenreInsight{
			Name:       name,
			Count:      count,
			Percentage: int(float64(count)/float64(len(preferences))*100 + 0.5),
		})
	}
	sort.SliceStable(genres, func(i, j int) bool {
		if genres[i].Count != genres[j].Count {
			return genres[i].Count > genres[j].Count
		}
		return genres[i].Name < genres[j].Name
	})
	if len(genres) > topGenreLimit {
		genres = genres[:topGenreLimit]
	}

	artists := make([]ArtistInsight, 0, len(artistCounts))
	for name, count := range artistCounts {
		artists = append(artists, ArtistInsight{Name: name, Count: count})
	}
	sort.SliceStable(artists, func(i, j int) bool {
		if artists[i].Count != artists[j].Count {
			return artists[i].Count > artists[j].Count
		}
		return artists[i].Name < artists[j].Name
	})
	if len(artists) > topArtistLimit {
		artists = artists[:topArtistLimit]
	}

	return genres, artists
}

func buildRecommendations(songs []EventSong) []TrackRecommendation {
	recommendations := make([]TrackRecommendation, 0, len(songs))
	for _, song := range songs {
		matchScore := song.Frequency * 10
		if matchScore > 100 {
			matchScore = 100
		}

		appearances := "times"
		if song.Frequency == 1 {
			appearances = "time"
		}
		reasons := []string{
			"Appeared " + strconv.Itoa(song.Frequency) + " " + appearances + " in guest playlists",
			"Top crowd favorite",
		}
		if song.Popularity > 70 {
			reasons = append(reasons, "High popularity track")
		} else {
			reasons = append(reasons, "Crowd-selected")
		}

		recommendations = append(recommendations, TrackRecommendation{
			ID:         song.TrackID,
			Title:      song.TrackName,
			Artist:     song.ArtistName,
			Album:      song.AlbumName,
			MatchScore: matchScore,
			Reasons:    reasons,
		})
	}
	return recommendations
}
