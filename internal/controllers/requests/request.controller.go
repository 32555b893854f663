package requestController

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"qrate/config"
	"qrate/internal/database"
	"qrate/internal/events"
	. "qrate/internal/models"
	"qrate/internal/repositories"
	"qrate/internal/services"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const topTrackLimit = 10

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrPolicy     = errors.New("policy error")
)

type RequestController struct {
	requestRepo        repositories.RequestRepository
	voteRepo           repositories.VoteRepository
	settingsRepo       repositories.SettingsRepository
	analyticsRepo      repositories.AnalyticsRepository
	transactionService *services.TransactionService
	analysisService    *services.AnalysisService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
}

type SubmitRequest struct {
	GuestID       string         `json:"guestId"`
	TrackID       *string        `json:"trackId,omitempty"`
	TrackName     string         `json:"trackName"`
	ArtistName    string         `json:"artistName"`
	AlbumName     *string        `json:"albumName,omitempty"`
	PreviewURL    *string        `json:"previewUrl,omitempty"`
	DurationMs    *int           `json:"durationMs,omitempty"`
	RequesterName *string        `json:"requesterName,omitempty"`
	Metadata      *TrackAnalysis `json:"metadata,omitempty"`
}

type UpdateRequest struct {
	Status    *RequestStatus   `json:"status,omitempty"`
	Metadata  *TrackAnalysis   `json:"metadata,omitempty"`
	TipAmount *decimal.Decimal `json:"tipAmount,omitempty"`
}

type VoteRequest struct {
	GuestID  string   `json:"guestId"`
	VoteType VoteType `json:"voteType"`
}

type VoteResponse struct {
	ID            uuid.UUID `json:"id"`
	VoteCount     int       `json:"voteCount"`
	DownvoteCount int       `json:"downvoteCount"`
}

type UpdateSettingsRequest struct {
	RequestsEnabled     *bool    `json:"requestsEnabled,omitempty"`
	VotingEnabled       *bool    `json:"votingEnabled,omitempty"`
	PaidRequestsEnabled *bool    `json:"paidRequestsEnabled,omitempty"`
	GenreRestrictions   []string `json:"genreRestrictions,omitempty"`
	ArtistRestrictions  []string `json:"artistRestrictions,omitempty"`
	OpenTime            *string  `json:"openTime,omitempty"`
	CloseTime           *string  `json:"closeTime,omitempty"`
	MinVoteThreshold    *int     `json:"minVoteThreshold,omitempty"`
	MaxRequestsPerGuest *int     `json:"maxRequestsPerGuest,omitempty"`
	AutoAcceptThreshold *int     `json:"autoAcceptThreshold,omitempty"`
}

type TopRequestedTrack struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	RequestCount int    `json:"requestCount"`
	TotalVotes   int    `json:"totalVotes"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

type RequestAnalytics struct {
	TotalRequests      int                 `json:"totalRequests"`
	StatusBreakdown    map[string]int      `json:"statusBreakdown"`
	TotalUpvotes       int                 `json:"totalUpvotes"`
	TotalDownvotes     int                 `json:"totalDownvotes"`
	AvgWaitTimeMinutes float64             `json:"avgWaitTimeMinutes"`
	TopRequestedTracks []TopRequestedTrack `json:"topRequestedTracks"`
	GenreDistribution  []GenreCount        `json:"genreDistribution"`
}

type RequestControllerInterface interface {
	Submit(ctx context.Context, code string, request *SubmitRequest) (*SongRequest, error)
	List(ctx context.Context, code string, filter repositories.RequestFilter) ([]SongRequest, error)
	Update(ctx context.Context, code string, requestID uuid.UUID, request *UpdateRequest) (*SongRequest, error)
	Vote(ctx context.Context, code string, requestID uuid.UUID, request *VoteRequest) (*VoteResponse, error)
	BestNext(ctx context.Context, code string, currentTrackID *uuid.UUID) (*services.Recommendation, error)
	GetSettings(ctx context.Context, code string) (*RequestSettings, error)
	UpdateSettings(ctx context.Context, code string, request *UpdateSettingsRequest) (*RequestSettings, error)
	Analytics(ctx context.Context, code string) (*RequestAnalytics, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) RequestControllerInterface {
	return &RequestController{
		requestRepo:        repos.Request,
		voteRepo:           repos.Vote,
		settingsRepo:       repos.Settings,
		analyticsRepo:      repos.Analytics,
		transactionService: services.Transaction,
		analysisService:    services.Analysis,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
	}
}

// Submit validates and stores a new song request. Field validation runs
// first, then the requests-enabled toggle, then quota and duplicate checks.
// The checks and the insert share one transaction so concurrent submissions
// from the same guest cannot slip past the quota. If the primary store is
// down the whole sequence reruns best-effort against the fallback store.
func (c *RequestController) Submit(ctx context.Context, code string, request *SubmitRequest) (*SongRequest, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("Submit")

	code = NormalizeEventCode(code)

	if strings.TrimSpace(request.TrackName) == "" ||
		strings.TrimSpace(request.ArtistName) == "" ||
		request.GuestID == "" {
		return nil, log.ErrorWithType(ErrValidation, "track name, artist name, and guest ID are required")
	}

	settings, err := c.settingsRepo.Get(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load request settings", err, "code", code)
	}
	if !settings.RequestsEnabled {
		return nil, log.ErrorWithType(ErrPolicy, "requests are disabled for this event", "code", code)
	}

	analysis := c.analysisService.DeriveSyntheticFeatures(request.TrackName, request.ArtistName)
	if request.Metadata != nil {
		analysis = mergeAnalysis(analysis, *request.Metadata)
	}

	songRequest := &SongRequest{
		EventCode:     code,
		GuestID:       request.GuestID,
		TrackID:       request.TrackID,
		TrackName:     request.TrackName,
		ArtistName:    request.ArtistName,
		AlbumName:     request.AlbumName,
		PreviewURL:    request.PreviewURL,
		DurationMs:    request.DurationMs,
		Status:        StatusPending,
		TipAmount:     decimal.Zero,
		RequesterName: request.RequesterName,
		SubmittedAt:   time.Now(),
		Metadata:      datatypes.NewJSONType(analysis),
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.requestRepo.CreateTx(tx, songRequest, settings.MaxRequestsPerGuest)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) || errors.Is(err, repositories.ErrDuplicateRequest) {
			return nil, err
		}
		log.Er("primary store submit failed, using fallback store", err, "code", code)
		if songRequest.ID == uuid.Nil {
			songRequest.ID = uuid.New()
		}
		if fbErr := c.requestRepo.CreateFallback(ctx, songRequest, settings.MaxRequestsPerGuest); fbErr != nil {
			return nil, fbErr
		}
	} else {
		c.requestRepo.Mirror(ctx, songRequest)
	}

	c.analyticsRepo.Record(ctx, code, "request_submitted", map[string]any{
		"guestId":    request.GuestID,
		"trackName":  request.TrackName,
		"artistName": request.ArtistName,
	})
	c.eventBus.PublishAnalytics(events.REQUEST_SUBMITTED, code, map[string]any{
		"requestId": songRequest.ID.String(),
		"trackName": request.TrackName,
	})

	log.Info("Song request submitted", "code", code, "requestID", songRequest.ID)
	return songRequest, nil
}

func (c *RequestController) List(ctx context.Context, code string, filter repositories.RequestFilter) ([]SongRequest, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("List")

	code = NormalizeEventCode(code)

	if filter.Status != "" && !filter.Status.IsValid() {
		filter.Status = ""
	}

	requests, err := c.requestRepo.ListByEvent(ctx, code, filter)
	if err != nil {
		return nil, log.Err("failed to list requests", err, "code", code)
	}

	return requests, nil
}

// Update overwrites the supplied fields on a request. Status moves freely
// between known values; entering played stamps PlayedAt once.
func (c *RequestController) Update(ctx context.Context, code string, requestID uuid.UUID, request *UpdateRequest) (*SongRequest, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("Update")

	code = NormalizeEventCode(code)

	if request.Status == nil && request.Metadata == nil && request.TipAmount == nil {
		return nil, log.ErrorWithType(ErrValidation, "no fields to update")
	}
	if request.Status != nil && !request.Status.IsValid() {
		return nil, log.ErrorWithType(ErrValidation, "unknown status", "status", *request.Status)
	}

	songRequest, err := c.requestRepo.GetByID(ctx, code, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", requestID)
		}
		return nil, log.Err("failed to load request", err, "requestID", requestID)
	}

	if request.Status != nil {
		songRequest.Status = *request.Status
		if *request.Status == StatusPlayed && songRequest.PlayedAt == nil {
			now := time.Now()
			songRequest.PlayedAt = &now
		}
	}
	if request.Metadata != nil {
		songRequest.Metadata = datatypes.NewJSONType(*request.Metadata)
	}
	if request.TipAmount != nil {
		songRequest.TipAmount = *request.TipAmount
	}

	if err := c.requestRepo.Update(ctx, songRequest); err != nil {
		return nil, log.Err("failed to update request", err, "requestID", requestID)
	}

	if request.Status != nil {
		statusMetric := "request_" + string(*request.Status)
		c.analyticsRepo.Record(ctx, code, statusMetric, map[string]any{
			"requestId": requestID.String(),
		})
		c.eventBus.PublishAnalytics(events.MessageType(statusMetric), code, map[string]any{
			"requestId": requestID.String(),
		})
	}

	return songRequest, nil
}

// Vote casts, switches, or idempotently repeats a guest's vote. The vote row
// and the request's tallies change in one transaction; when the primary store
// is down the same transition runs against the fallback mirror.
func (c *RequestController) Vote(ctx context.Context, code string, requestID uuid.UUID, request *VoteRequest) (*VoteResponse, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("Vote")

	code = NormalizeEventCode(code)

	if request.GuestID == "" || !request.VoteType.IsValid() {
		return nil, log.ErrorWithType(ErrValidation, "guest ID and vote type (upvote/downvote) are required")
	}

	settings, err := c.settingsRepo.Get(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load request settings", err, "code", code)
	}
	if !settings.VotingEnabled {
		return nil, log.ErrorWithType(ErrPolicy, "voting is disabled for this event", "code", code)
	}

	var updated *SongRequest
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var txErr error
		updated, txErr = c.voteRepo.CastTx(tx, code, requestID, request.GuestID, request.VoteType)
		return txErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", requestID)
		}
		log.Er("primary store vote failed, using fallback store", err, "requestID", requestID)
		updated, err = c.voteRepo.CastFallback(ctx, code, requestID, request.GuestID, request.VoteType)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", requestID)
			}
			return nil, err
		}
	} else {
		c.requestRepo.Mirror(ctx, updated)
	}

	c.eventBus.PublishAnalytics(events.REQUEST_VOTED, code, map[string]any{
		"requestId": requestID.String(),
		"voteType":  string(request.VoteType),
	})

	return &VoteResponse{
		ID:            updated.ID,
		VoteCount:     updated.VoteCount,
		DownvoteCount: updated.DownvoteCount,
	}, nil
}

// BestNext scores pending and accepted requests against the currently playing
// track and returns the single best pick, or nil when nothing is queued.
func (c *RequestController) BestNext(ctx context.Context, code string, currentTrackID *uuid.UUID) (*services.Recommendation, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("BestNext")

	code = NormalizeEventCode(code)

	candidates, err := c.requestRepo.ListByStatuses(ctx, code, []RequestStatus{StatusPending, StatusAccepted})
	if err != nil {
		return nil, log.Err("failed to load candidate requests", err, "code", code)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var current *TrackAnalysis
	if currentTrackID != nil {
		currentRequest, err := c.requestRepo.GetByID(ctx, code, *currentTrackID)
		if err == nil {
			analysis := currentRequest.Metadata.Data()
			current = &analysis
		} else if !errors.Is(err, repositories.ErrNotFound) {
			log.Er("failed to load current track, scoring without it", err, "currentTrackID", *currentTrackID)
		}
	}

	return c.analysisService.BestNext(candidates, current), nil
}

func (c *RequestController) GetSettings(ctx context.Context, code string) (*RequestSettings, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("GetSettings")

	code = NormalizeEventCode(code)

	settings, err := c.settingsRepo.Get(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load request settings", err, "code", code)
	}

	return settings, nil
}

// UpdateSettings merges the supplied fields onto the event's current settings
// and stores the result. Omitted fields keep their existing values.
func (c *RequestController) UpdateSettings(ctx context.Context, code string, request *UpdateSettingsRequest) (*RequestSettings, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("UpdateSettings")

	code = NormalizeEventCode(code)

	settings, err := c.settingsRepo.Get(ctx, code)
	if err != nil {
		return nil, log.Err("failed to load request settings", err, "code", code)
	}

	if request.RequestsEnabled != nil {
		settings.RequestsEnabled = *request.RequestsEnabled
	}
	if request.VotingEnabled != nil {
		settings.VotingEnabled = *request.VotingEnabled
	}
	if request.PaidRequestsEnabled != nil {
		settings.PaidRequestsEnabled = *request.PaidRequestsEnabled
	}
	if request.GenreRestrictions != nil {
		settings.GenreRestrictions = datatypes.NewJSONSlice(request.GenreRestrictions)
	}
	if request.ArtistRestrictions != nil {
		settings.ArtistRestrictions = datatypes.NewJSONSlice(request.ArtistRestrictions)
	}
	if request.OpenTime != nil {
		settings.OpenTime = request.OpenTime
	}
	if request.CloseTime != nil {
		settings.CloseTime = request.CloseTime
	}
	if request.MinVoteThreshold != nil {
		settings.MinVoteThreshold = *request.MinVoteThreshold
	}
	if request.MaxRequestsPerGuest != nil {
		settings.MaxRequestsPerGuest = *request.MaxRequestsPerGuest
	}
	if request.AutoAcceptThreshold != nil {
		settings.AutoAcceptThreshold = *request.AutoAcceptThreshold
	}

	if err := c.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, log.Err("failed to save request settings", err, "code", code)
	}

	return settings, nil
}

// Analytics summarizes the event's request activity from the full request
// list, so it reflects whichever store served the read.
func (c *RequestController) Analytics(ctx context.Context, code string) (*RequestAnalytics, error) {
	log := logger.NewWithContext(ctx, "requestController").Function("Analytics")

	code = NormalizeEventCode(code)

	requests, err := c.requestRepo.ListByEvent(ctx, code, repositories.RequestFilter{})
	if err != nil {
		return nil, log.Err("failed to load requests", err, "code", code)
	}

	return BuildRequestAnalytics(requests), nil
}

// BuildRequestAnalytics computes the analytics summary from a request list.
func BuildRequestAnalytics(requests []SongRequest) *RequestAnalytics {
	analytics := &RequestAnalytics{
		TotalRequests:      len(requests),
		StatusBreakdown:    make(map[string]int),
		TopRequestedTracks: []TopRequestedTrack{},
		GenreDistribution:  []GenreCount{},
	}

	type trackKey struct {
		name   string
		artist string
	}
	trackCounts := make(map[trackKey]*TopRequestedTrack)
	genreCounts := make(map[string]int)

	var waitTotal float64
	var waitCount int

	for i := range requests {
		request := &requests[i]

		analytics.StatusBreakdown[string(request.Status)]++
		analytics.TotalUpvotes += request.VoteCount
		analytics.TotalDownvotes += request.DownvoteCount

		key := trackKey{name: request.TrackName, artist: request.ArtistName}
		track, seen := trackCounts[key]
		if !seen {
			track = &TopRequestedTrack{TrackName: request.TrackName, ArtistName: request.ArtistName}
			trackCounts[key] = track
		}
		track.RequestCount++
		track.TotalVotes += request.VoteCount

		if request.Status == StatusPlayed && request.PlayedAt != nil {
			waitTotal += request.PlayedAt.Sub(request.SubmittedAt).Minutes()
			waitCount++
		}

		for _, genre := range request.Metadata.Data().Genre {
			genreCounts[genre]++
		}
	}

	if waitCount > 0 {
		avg := waitTotal / float64(waitCount)
		analytics.AvgWaitTimeMinutes = float64(int(avg*10+0.5)) / 10
	}

	for _, track := range trackCounts {
		analytics.TopRequestedTracks = append(analytics.TopRequestedTracks, *track)
	}
	sort.SliceStable(analytics.TopRequestedTracks, func(i, j int) bool {
		a, b := analytics.TopRequestedTracks[i], analytics.TopRequestedTracks[j]
		if a.RequestCount != b.RequestCount {
			return a.RequestCount > b.RequestCount
		}
		if a.TotalVotes != b.TotalVotes {
			return a.TotalVotes > b.TotalVotes
		}
		return a.TrackName < b.TrackName
	})
	if len(analytics.TopRequestedTracks) > topTrackLimit {
		analytics.TopRequestedTracks = analytics.TopRequestedTracks[:topTrackLimit]
	}

	for genre, count := range genreCounts {
		analytics.GenreDistribution = append(analytics.GenreDistribution, GenreCount{Genre: genre, Count: count})
	}
	sort.SliceStable(analytics.GenreDistribution, func(i, j int) bool {
		if analytics.GenreDistribution[i].Count != analytics.GenreDistribution[j].Count {
			return analytics.GenreDistribution[i].Count > analytics.GenreDistribution[j].Count
		}
		return analytics.GenreDistribution[i].Genre < analytics.GenreDistribution[j].Genre
	})

	return analytics
}

// mergeAnalysis lays caller-supplied metadata over the derived analysis,
// keeping derived values for anything the caller left zero.
func mergeAnalysis(derived, supplied TrackAnalysis) TrackAnalysis {
	merged := derived
	if supplied.BPM != 0 {
		merged.BPM = supplied.BPM
	}
	if supplied.Key != "" {
		merged.Key = supplied.Key
	}
	if supplied.Energy != 0 {
		merged.Energy = supplied.Energy
	}
	if supplied.Danceability != 0 {
		merged.Danceability = supplied.Danceability
	}
	if len(supplied.Genre) > 0 {
		merged.Genre = supplied.Genre
	}
	return merged
}
