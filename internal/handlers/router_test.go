package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qrate/config"
	"qrate/internal/app"
	"qrate/internal/controllers"
	eventController "qrate/internal/controllers/events"
	requestController "qrate/internal/controllers/requests"
	songController "qrate/internal/controllers/songs"
	"qrate/internal/handlers"
	"qrate/internal/models"
	"qrate/internal/repositories"
	"qrate/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventController struct {
	createEvent func(ctx context.Context, request *eventController.CreateEventRequest) (*models.Event, error)
	getEvent    func(ctx context.Context, code, userID string, sessionType models.SessionType) (*eventController.EventDetail, error)
	getInsights func(ctx context.Context, code string) (*eventController.CrowdInsights, error)
}

func (s *stubEventController) CreateEvent(ctx context.Context, request *eventController.CreateEventRequest) (*models.Event, error) {
	return s.createEvent(ctx, request)
}

func (s *stubEventController) GetEvent(ctx context.Context, code, userID string, sessionType models.SessionType) (*eventController.EventDetail, error) {
	return s.getEvent(ctx, code, userID, sessionType)
}

func (s *stubEventController) GetInsights(ctx context.Context, code string) (*eventController.CrowdInsights, error) {
	return s.getInsights(ctx, code)
}

type stubSongController struct {
	submitPreferences func(ctx context.Context, code string, request *songController.SubmitPreferencesRequest) (*songController.SubmitPreferencesResponse, error)
	topSongs          func(ctx context.Context, code string) ([]songController.RankedSong, error)
	sessionPool       func(ctx context.Context, code string) ([]songController.RankedSong, error)
}

func (s *stubSongController) SubmitPreferences(ctx context.Context, code string, request *songController.SubmitPreferencesRequest) (*songController.SubmitPreferencesResponse, error) {
	return s.submitPreferences(ctx, code, request)
}

func (s *stubSongController) TopSongs(ctx context.Context, code string) ([]songController.RankedSong, error) {
	return s.topSongs(ctx, code)
}

func (s *stubSongController) SessionPool(ctx context.Context, code string) ([]songController.RankedSong, error) {
	return s.sessionPool(ctx, code)
}

type stubRequestController struct {
	submit         func(ctx context.Context, code string, request *requestController.SubmitRequest) (*models.SongRequest, error)
	list           func(ctx context.Context, code string, filter repositories.RequestFilter) ([]models.SongRequest, error)
	update         func(ctx context.Context, code string, requestID uuid.UUID, request *requestController.UpdateRequest) (*models.SongRequest, error)
	vote           func(ctx context.Context, code string, requestID uuid.UUID, request *requestController.VoteRequest) (*requestController.VoteResponse, error)
	bestNext       func(ctx context.Context, code string, currentTrackID *uuid.UUID) (*services.Recommendation, error)
	getSettings    func(ctx context.Context, code string) (*models.RequestSettings, error)
	updateSettings func(ctx context.Context, code string, request *requestController.UpdateSettingsRequest) (*models.RequestSettings, error)
	analytics      func(ctx context.Context, code string) (*requestController.RequestAnalytics, error)
}

func (s *stubRequestController) Submit(ctx context.Context, code string, request *requestController.SubmitRequest) (*models.SongRequest, error) {
	return s.submit(ctx, code, request)
}

func (s *stubRequestController) List(ctx context.Context, code string, filter repositories.RequestFilter) ([]models.SongRequest, error) {
	return s.list(ctx, code, filter)
}

func (s *stubRequestController) Update(ctx context.Context, code string, requestID uuid.UUID, request *requestController.UpdateRequest) (*models.SongRequest, error) {
	return s.update(ctx, code, requestID, request)
}

func (s *stubRequestController) Vote(ctx context.Context, code string, requestID uuid.UUID, request *requestController.VoteRequest) (*requestController.VoteResponse, error) {
	return s.vote(ctx, code, requestID, request)
}

func (s *stubRequestController) BestNext(ctx context.Context, code string, currentTrackID *uuid.UUID) (*services.Recommendation, error) {
	return s.bestNext(ctx, code, currentTrackID)
}

func (s *stubRequestController) GetSettings(ctx context.Context, code string) (*models.RequestSettings, error) {
	return s.getSettings(ctx, code)
}

func (s *stubRequestController) UpdateSettings(ctx context.Context, code string, request *requestController.UpdateSettingsRequest) (*models.RequestSettings, error) {
	return s.updateSettings(ctx, code, request)
}

func (s *stubRequestController) Analytics(ctx context.Context, code string) (*requestController.RequestAnalytics, error) {
	return s.analytics(ctx, code)
}

func newTestServer(t *testing.T, ctrls controllers.Controllers) *fiber.App {
	t.Helper()

	testApp := app.App{
		Config:      config.Config{GeneralVersion: "test"},
		Controllers: ctrls,
	}

	server := fiber.New()
	require.NoError(t, handlers.Router(server, &testApp))
	return server
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer(t, controllers.Controllers{})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "qrate_api", body["service"])
	assert.Equal(t, "test", body["version"])
}

func TestCreateEventHandler(t *testing.T) {
	t.Run("success envelope carries the event", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Event: &stubEventController{
				createEvent: func(_ context.Context, request *eventController.CreateEventRequest) (*models.Event, error) {
					assert.Equal(t, "Birthday Bash", request.Name)
					return &models.Event{Name: request.Name, Theme: request.Theme, Code: "AB12CD", IsActive: true}, nil
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/events",
			strings.NewReader(`{"name":"Birthday Bash","theme":"disco"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		event := body["event"].(map[string]any)
		assert.Equal(t, "AB12CD", event["code"])
	})

	t.Run("validation errors map to 400 with the message", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Event: &stubEventController{
				createEvent: func(context.Context, *eventController.CreateEventRequest) (*models.Event, error) {
					return nil, fmt.Errorf("%w: event name and theme are required", eventController.ErrValidation)
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["error"], "name and theme")
	})

	t.Run("storage errors stay behind a generic 500 message", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Event: &stubEventController{
				createEvent: func(context.Context, *eventController.CreateEventRequest) (*models.Event, error) {
					return nil, errors.New("pq: connection refused on host db-internal")
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"name":"x","theme":"y"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Failed to create event", body["error"])
	})
}

func TestGetEventHandler(t *testing.T) {
	t.Run("unknown event is 404", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Event: &stubEventController{
				getEvent: func(context.Context, string, string, models.SessionType) (*eventController.EventDetail, error) {
					return nil, fmt.Errorf("%w: event not found", eventController.ErrNotFound)
				},
			},
		})

		resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/events/NOPE42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("session type and user id pass through from the query", func(t *testing.T) {
		var gotUserID string
		var gotType models.SessionType
		server := newTestServer(t, controllers.Controllers{
			Event: &stubEventController{
				getEvent: func(_ context.Context, code, userID string, sessionType models.SessionType) (*eventController.EventDetail, error) {
					gotUserID = userID
					gotType = sessionType
					return &eventController.EventDetail{
						Event:       &models.Event{Code: code},
						Preferences: []models.GuestPreference{},
					}, nil
				},
			},
		})

		resp, err := server.Test(httptest.NewRequest(http.MethodGet,
			"/api/events/AB12CD?session_type=dj&user_id=dj-7", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "dj-7", gotUserID)
		assert.Equal(t, models.SessionDJ, gotType)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.NotNil(t, body["preferences"])
	})
}

func TestVoteHandler(t *testing.T) {
	t.Run("malformed request id is 400", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{Request: &stubRequestController{}})

		req := httptest.NewRequest(http.MethodPost,
			"/api/events/AB12CD/requests/not-a-uuid/vote", strings.NewReader(`{"guestId":"g1","voteType":"upvote"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid request ID", body["error"])
	})

	t.Run("voting disabled is 403", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				vote: func(context.Context, string, uuid.UUID, *requestController.VoteRequest) (*requestController.VoteResponse, error) {
					return nil, fmt.Errorf("%w: voting is disabled for this event", requestController.ErrPolicy)
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost,
			"/api/events/AB12CD/requests/"+uuid.NewString()+"/vote",
			strings.NewReader(`{"guestId":"g1","voteType":"upvote"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("tallies come back in the envelope", func(t *testing.T) {
		requestID := uuid.New()
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				vote: func(_ context.Context, _ string, gotID uuid.UUID, req *requestController.VoteRequest) (*requestController.VoteResponse, error) {
					assert.Equal(t, requestID, gotID)
					assert.Equal(t, models.VoteUp, req.VoteType)
					return &requestController.VoteResponse{ID: gotID, VoteCount: 4, DownvoteCount: 1}, nil
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost,
			"/api/events/AB12CD/requests/"+requestID.String()+"/vote",
			strings.NewReader(`{"guestId":"g1","voteType":"upvote"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		result := body["request"].(map[string]any)
		assert.Equal(t, float64(4), result["voteCount"])
		assert.Equal(t, float64(1), result["downvoteCount"])
	})
}

func TestSubmitRequestHandler(t *testing.T) {
	t.Run("quota exhaustion is 400", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				submit: func(context.Context, string, *requestController.SubmitRequest) (*models.SongRequest, error) {
					return nil, fmt.Errorf("%w: guest request quota reached", repositories.ErrQuotaExceeded)
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/events/AB12CD/requests",
			strings.NewReader(`{"guestId":"g1","trackName":"Song","artistName":"Artist"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate request is 400", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				submit: func(context.Context, string, *requestController.SubmitRequest) (*models.SongRequest, error) {
					return nil, fmt.Errorf("%w: guest already requested this track", repositories.ErrDuplicateRequest)
				},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/events/AB12CD/requests",
			strings.NewReader(`{"guestId":"g1","trackName":"Song","artistName":"Artist"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestBestNextHandler(t *testing.T) {
	t.Run("malformed current track id is 400", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{Request: &stubRequestController{}})

		resp, err := server.Test(httptest.NewRequest(http.MethodGet,
			"/api/events/AB12CD/requests/best-next?current_track_id=garbage", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty pool returns a null recommendation", func(t *testing.T) {
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				bestNext: func(_ context.Context, _ string, currentTrackID *uuid.UUID) (*services.Recommendation, error) {
					assert.Nil(t, currentTrackID)
					return nil, nil
				},
			},
		})

		resp, err := server.Test(httptest.NewRequest(http.MethodGet,
			"/api/events/AB12CD/requests/best-next", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Nil(t, body["recommendation"])
	})

	t.Run("current track id passes through", func(t *testing.T) {
		trackID := uuid.New()
		server := newTestServer(t, controllers.Controllers{
			Request: &stubRequestController{
				bestNext: func(_ context.Context, _ string, currentTrackID *uuid.UUID) (*services.Recommendation, error) {
					require.NotNil(t, currentTrackID)
					assert.Equal(t, trackID, *currentTrackID)
					return &services.Recommendation{TrackName: "Next Up", CompatibilityScore: 92}, nil
				},
			},
		})

		resp, err := server.Test(httptest.NewRequest(http.MethodGet,
			"/api/events/AB12CD/requests/best-next?current_track_id="+trackID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		recommendation := body["recommendation"].(map[string]any)
		assert.Equal(t, "Next Up", recommendation["trackName"])
		assert.Equal(t, float64(92), recommendation["compatibilityScore"])
	})
}

func TestTopSongsHandler(t *testing.T) {
	server := newTestServer(t, controllers.Controllers{
		Song: &stubSongController{
			topSongs: func(_ context.Context, code string) ([]songController.RankedSong, error) {
				assert.Equal(t, "AB12CD", code)
				return []songController.RankedSong{
					{ID: "t1", Title: "Hit", Artist: "A", Frequency: 5, Popularity: 80},
				}, nil
			},
		},
	})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/events/AB12CD/top-songs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	songs := body["songs"].([]any)
	require.Len(t, songs, 1)
	assert.Equal(t, "Hit", songs[0].(map[string]any)["title"])
}
