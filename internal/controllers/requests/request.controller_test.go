package requestController_test

import (
	"testing"
	"time"

	requestController "qrate/internal/controllers/requests"
	"qrate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func playedRequest(track, artist string, submitted time.Time, waited time.Duration, genres ...string) models.SongRequest {
	played := submitted.Add(waited)
	return models.SongRequest{
		TrackName:   track,
		ArtistName:  artist,
		Status:      models.StatusPlayed,
		SubmittedAt: submitted,
		PlayedAt:    &played,
		Metadata:    datatypes.NewJSONType(models.TrackAnalysis{Genre: genres}),
	}
}

func TestBuildRequestAnalytics(t *testing.T) {
	base := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)

	t.Run("empty input yields zeroed shape", func(t *testing.T) {
		analytics := requestController.BuildRequestAnalytics(nil)

		require.NotNil(t, analytics)
		assert.Equal(t, 0, analytics.TotalRequests)
		assert.Empty(t, analytics.StatusBreakdown)
		assert.Zero(t, analytics.AvgWaitTimeMinutes)
		assert.NotNil(t, analytics.TopRequestedTracks)
		assert.NotNil(t, analytics.GenreDistribution)
	})

	t.Run("counts statuses and votes", func(t *testing.T) {
		requests := []models.SongRequest{
			{TrackName: "A", ArtistName: "X", Status: models.StatusPending, VoteCount: 3, DownvoteCount: 1},
			{TrackName: "B", ArtistName: "X", Status: models.StatusPending, VoteCount: 2},
			{TrackName: "C", ArtistName: "Y", Status: models.StatusRejected, DownvoteCount: 4},
		}

		analytics := requestController.BuildRequestAnalytics(requests)

		assert.Equal(t, 3, analytics.TotalRequests)
		assert.Equal(t, map[string]int{"pending": 2, "rejected": 1}, analytics.StatusBreakdown)
		assert.Equal(t, 5, analytics.TotalUpvotes)
		assert.Equal(t, 5, analytics.TotalDownvotes)
	})

	t.Run("average wait covers played requests only", func(t *testing.T) {
		requests := []models.SongRequest{
			playedRequest("A", "X", base, 10*time.Minute),
			playedRequest("B", "Y", base, 15*time.Minute),
			{TrackName: "C", ArtistName: "Z", Status: models.StatusPending, SubmittedAt: base},
		}

		analytics := requestController.BuildRequestAnalytics(requests)
		assert.Equal(t, 12.5, analytics.AvgWaitTimeMinutes)
	})

	t.Run("average wait rounds to one decimal", func(t *testing.T) {
		requests := []models.SongRequest{
			playedRequest("A", "X", base, 10*time.Minute),
			playedRequest("B", "Y", base, 10*time.Minute+20*time.Second),
			playedRequest("C", "Z", base, 10*time.Minute+20*time.Second),
		}

		// (10 + 10.333 + 10.333) / 3 = 10.222 -> 10.2
		analytics := requestController.BuildRequestAnalytics(requests)
		assert.Equal(t, 10.2, analytics.AvgWaitTimeMinutes)
	})

	t.Run("top tracks fold repeats and rank by demand", func(t *testing.T) {
		requests := []models.SongRequest{
			{TrackName: "Encore", ArtistName: "X", Status: models.StatusPending, VoteCount: 1},
			{TrackName: "Encore", ArtistName: "X", Status: models.StatusPlayed, VoteCount: 2},
			{TrackName: "Once", ArtistName: "Y", Status: models.StatusPending, VoteCount: 9},
		}

		analytics := requestController.BuildRequestAnalytics(requests)

		require.Len(t, analytics.TopRequestedTracks, 2)
		assert.Equal(t, "Encore", analytics.TopRequestedTracks[0].TrackName)
		assert.Equal(t, 2, analytics.TopRequestedTracks[0].RequestCount)
		assert.Equal(t, 3, analytics.TopRequestedTracks[0].TotalVotes)
		assert.Equal(t, "Once", analytics.TopRequestedTracks[1].TrackName)
	})

	t.Run("genre distribution sorts by count then name", func(t *testing.T) {
		requests := []models.SongRequest{
			playedRequest("A", "X", base, time.Minute, "Pop", "Rock"),
			playedRequest("B", "Y", base, time.Minute, "Pop"),
			playedRequest("C", "Z", base, time.Minute, "Blues"),
		}

		analytics := requestController.BuildRequestAnalytics(requests)

		require.Len(t, analytics.GenreDistribution, 3)
		assert.Equal(t, requestController.GenreCount{Genre: "Pop", Count: 2}, analytics.GenreDistribution[0])
		assert.Equal(t, requestController.GenreCount{Genre: "Blues", Count: 1}, analytics.GenreDistribution[1])
		assert.Equal(t, requestController.GenreCount{Genre: "Rock", Count: 1}, analytics.GenreDistribution[2])
	})

	t.Run("top tracks cap at ten", func(t *testing.T) {
		var requests []models.SongRequest
		for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
			requests = append(requests, models.SongRequest{
				TrackName: name, ArtistName: "X", Status: models.StatusPending,
			})
		}

		analytics := requestController.BuildRequestAnalytics(requests)
		assert.Len(t, analytics.TopRequestedTracks, 10)
	})
}
