package eventController

import (
	"testing"

	. "qrate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestGenerateEventCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateEventCode()
		require.Len(t, code, codeLength)
		assert.Equal(t, NormalizeEventCode(code), code)
		seen[code] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean the
	// generator is broken, not unlucky.
	assert.Greater(t, len(seen), 90)
}

func TestBuildTasteProfile(t *testing.T) {
	t.Run("empty preferences", func(t *testing.T) {
		genres, artists := buildTasteProfile(nil)
		assert.Empty(t, genres)
		assert.Empty(t, artists)
	})

	t.Run("percentage is share of guests", func(t *testing.T) {
		preferences := []GuestPreference{
			{Genres: datatypes.NewJSONSlice([]string{"Pop", "Rock"}), Artists: datatypes.NewJSONSlice([]string{"ABBA"})},
			{Genres: datatypes.NewJSONSlice([]string{"Pop"}), Artists: datatypes.NewJSONSlice([]string{"ABBA", "Queen"})},
			{Genres: datatypes.NewJSONSlice([]string{"Pop"}), Artists: datatypes.NewJSONSlice([]string{"Queen"})},
		}

		genres, artists := buildTasteProfile(preferences)

		require.NotEmpty(t, genres)
		assert.Equal(t, GenreInsight{Name: "Pop", Count: 3, Percentage: 100}, genres[0])
		assert.Equal(t, GenreInsight{Name: "Rock", Count: 1, Percentage: 33}, genres[1])

		require.Len(t, artists, 2)
		assert.Equal(t, ArtistInsight{Name: "ABBA", Count: 2}, artists[0])
		assert.Equal(t, ArtistInsight{Name: "Queen", Count: 2}, artists[1])
	})

	t.Run("genres cap at five, artists at ten", func(t *testing.T) {
		preference := GuestPreference{
			Genres: datatypes.NewJSONSlice([]string{"a", "b", "c", "d", "e", "f", "g"}),
			Artists: datatypes.NewJSONSlice([]string{
				"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11", "a12",
			}),
		}

		genres, artists := buildTasteProfile([]GuestPreference{preference})
		assert.Len(t, genres, topGenreLimit)
		assert.Len(t, artists, topArtistLimit)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		preferences := []GuestPreference{
			{Genres: datatypes.NewJSONSlice([]string{"Rock", "Blues", "Pop"})},
		}

		genres, _ := buildTasteProfile(preferences)
		require.Len(t, genres, 3)
		assert.Equal(t, "Blues", genres[0].Name)
		assert.Equal(t, "Pop", genres[1].Name)
		assert.Equal(t, "Rock", genres[2].Name)
	})
}

func TestBuildRecommendations(t *testing.T) {
	songs := []EventSong{
		{TrackID: "t1", TrackName: "Hit", ArtistName: "A", Frequency: 3, Popularity: 85},
		{TrackID: "t2", TrackName: "Sleeper", ArtistName: "B", Frequency: 1, Popularity: 40},
		{TrackID: "t3", TrackName: "Anthem", ArtistName: "C", Frequency: 30, Popularity: 90},
	}

	recommendations := buildRecommendations(songs)
	require.Len(t, recommendations, 3)

	hit := recommendations[0]
	assert.Equal(t, 30, hit.MatchScore)
	assert.Contains(t, hit.Reasons, "Appeared 3 times in guest playlists")
	assert.Contains(t, hit.Reasons, "High popularity track")

	sleeper := recommendations[1]
	assert.Equal(t, 10, sleeper.MatchScore)
	assert.Contains(t, sleeper.Reasons, "Appeared 1 time in guest playlists")
	assert.Contains(t, sleeper.Reasons, "Crowd-selected")
	assert.NotContains(t, sleeper.Reasons, "High popularity track")

	// Match score saturates at 100 no matter how often a track appears.
	assert.Equal(t, 100, recommendations[2].MatchScore)
}
