package services_test

import (
	"testing"

	"qrate/internal/models"
	"qrate/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceHash recomputes the track hash independently of the service so the
// fixtures below catch regressions in the folding arithmetic.
func referenceHash(s string) int {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	if h < 0 {
		return -int(h)
	}
	return int(h)
}

func TestDeriveSyntheticFeatures(t *testing.T) {
	analysisService := services.NewAnalysisService()

	t.Run("deterministic for identical input", func(t *testing.T) {
		first := analysisService.DeriveSyntheticFeatures("Dancing Queen", "ABBA")
		second := analysisService.DeriveSyntheticFeatures("Dancing Queen", "ABBA")
		assert.Equal(t, first, second)
	})

	t.Run("different tracks differ", func(t *testing.T) {
		first := analysisService.DeriveSyntheticFeatures("Dancing Queen", "ABBA")
		second := analysisService.DeriveSyntheticFeatures("Bohemian Rhapsody", "Queen")
		assert.NotEqual(t, first, second)
	})

	t.Run("values stay inside their ranges", func(t *testing.T) {
		inputs := []struct{ track, artist string }{
			{"Dancing Queen", "ABBA"},
			{"Bohemian Rhapsody", "Queen"},
			{"", ""},
			{"a", "b"},
			{"Despacito", "Luis Fonsi"},
			{"Nothing Else Matters", "Metallica"},
		}
		for _, input := range inputs {
			analysis := analysisService.DeriveSyntheticFeatures(input.track, input.artist)
			assert.GreaterOrEqual(t, analysis.BPM, 60, "bpm floor for %q", input.track)
			assert.LessOrEqual(t, analysis.BPM, 180, "bpm ceiling for %q", input.track)
			assert.GreaterOrEqual(t, analysis.Energy, 0)
			assert.LessOrEqual(t, analysis.Energy, 100)
			assert.GreaterOrEqual(t, analysis.Danceability, 0)
			assert.LessOrEqual(t, analysis.Danceability, 100)
			assert.NotEmpty(t, analysis.Key)
			assert.NotEmpty(t, analysis.Genre)
			assert.LessOrEqual(t, len(analysis.Genre), 2)
		}
	})

	t.Run("matches independent recomputation", func(t *testing.T) {
		track, artist := "Dancing Queen", "ABBA"
		hash := referenceHash(track + artist)

		analysis := analysisService.DeriveSyntheticFeatures(track, artist)

		wantBPM := 60 + hash%120
		assert.Equal(t, wantBPM, analysis.BPM)

		keys := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
		assert.Equal(t, keys[hash%12], analysis.Key)

		genres := []string{
			"Pop", "Rock", "Hip-Hop", "Electronic", "R&B",
			"Country", "Jazz", "Latin", "Reggae", "Blues",
		}
		assert.Equal(t, genres[hash%10], analysis.Genre[0])
		if hash%3 == 0 && genres[(hash+7)%10] != genres[hash%10] {
			require.Len(t, analysis.Genre, 2)
			assert.Equal(t, genres[(hash+7)%10], analysis.Genre[1])
		} else {
			assert.Len(t, analysis.Genre, 1)
		}
	})

	t.Run("secondary genre is distinct when present", func(t *testing.T) {
		inputs := []struct{ track, artist string }{
			{"Dancing Queen", "ABBA"},
			{"Hey Jude", "The Beatles"},
			{"Levitating", "Dua Lipa"},
			{"Hotel California", "Eagles"},
			{"One", "U2"},
		}
		for _, input := range inputs {
			analysis := analysisService.DeriveSyntheticFeatures(input.track, input.artist)
			if len(analysis.Genre) == 2 {
				assert.NotEqual(t, analysis.Genre[0], analysis.Genre[1])
			}
		}
	})
}

func candidate(track, artist string, votes int) models.SongRequest {
	request := models.SongRequest{
		TrackName:  track,
		ArtistName: artist,
		VoteCount:  votes,
		Status:     models.StatusPending,
	}
	request.ID = uuid.New()
	return request
}

func TestBestNext(t *testing.T) {
	analysisService := services.NewAnalysisService()

	t.Run("nil for empty pool", func(t *testing.T) {
		assert.Nil(t, analysisService.BestNext(nil, nil))
		assert.Nil(t, analysisService.BestNext([]models.SongRequest{}, nil))
	})

	t.Run("no current track means votes decide", func(t *testing.T) {
		low := candidate("Song A", "Artist X", 0)
		high := candidate("Song B", "Artist Y", 3)

		recommendation := analysisService.BestNext([]models.SongRequest{low, high}, nil)
		require.NotNil(t, recommendation)
		assert.Equal(t, high.ID, recommendation.RequestID)
		assert.Equal(t, 100, recommendation.CompatibilityScore)
		assert.Contains(t, recommendation.Reason, "3 crowd votes")
		assert.Contains(t, recommendation.Reason, "Perfect musical match")
		assert.NotContains(t, recommendation.Reason, "Similar tempo")
	})

	t.Run("vote bonus caps at twenty", func(t *testing.T) {
		modest := candidate("Song A", "Artist X", 4)
		landslide := candidate("Song A", "Artist X", 400)

		first := analysisService.BestNext([]models.SongRequest{modest}, nil)
		second := analysisService.BestNext([]models.SongRequest{landslide}, nil)
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.CompatibilityScore, second.CompatibilityScore)
	})

	t.Run("identical track is a perfect match against itself", func(t *testing.T) {
		request := candidate("Dancing Queen", "ABBA", 0)
		current := analysisService.DeriveSyntheticFeatures("Dancing Queen", "ABBA")

		recommendation := analysisService.BestNext([]models.SongRequest{request}, &current)
		require.NotNil(t, recommendation)
		assert.Equal(t, 100, recommendation.CompatibilityScore)
		assert.Contains(t, recommendation.Reason, "Similar tempo")
	})

	t.Run("default reason when nothing applies", func(t *testing.T) {
		request := candidate("Dancing Queen", "ABBA", 0)
		current := models.TrackAnalysis{BPM: 180, Energy: 100}
		analysis := analysisService.DeriveSyntheticFeatures("Dancing Queen", "ABBA")
		bpmDiff := 180 - analysis.BPM
		if bpmDiff < 0 {
			bpmDiff = -bpmDiff
		}
		if bpmDiff <= 5 {
			t.Skip("fixture happens to be tempo-compatible")
		}

		recommendation := analysisService.BestNext([]models.SongRequest{request}, &current)
		require.NotNil(t, recommendation)
		if recommendation.CompatibilityScore < 80 {
			assert.Equal(t, "Good fit for current vibe", recommendation.Reason)
		}
	})
}
