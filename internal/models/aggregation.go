package models

import "sort"

// FoldPreferenceTracks recomputes the per-event song aggregate directly from
// guest preference payloads. Used when the stored aggregate is empty or the
// primary store is unavailable. Tracks are keyed by (id or name, primary
// artist) so the same song submitted with and without an ID still collapses.
// Results are ordered by frequency, popularity breaking ties, and trimmed to
// limit (0 means no trim).
func FoldPreferenceTracks(preferences []GuestPreference, limit int) []EventSong {
	type trackKey struct {
		idOrName string
		artist   string
	}

	counts := make(map[trackKey]*EventSong)
	order := make([]trackKey, 0)

	for _, pref := range preferences {
		for _, track := range pref.Tracks.Data() {
			idOrName := track.ID
			if idOrName == "" {
				idOrName = track.Name
			}
			key := trackKey{idOrName: idOrName, artist: track.PrimaryArtist()}

			song, seen := counts[key]
			if !seen {
				song = &EventSong{
					EventCode:  pref.EventCode,
					TrackID:    track.ID,
					TrackName:  track.Name,
					ArtistName: track.PrimaryArtist(),
					AlbumName:  track.Album,
					Popularity: track.Popularity,
				}
				counts[key] = song
				order = append(order, key)
			}
			song.Frequency++
		}
	}

	songs := make([]EventSong, 0, len(order))
	for _, key := range order {
		songs = append(songs, *counts[key])
	}
	sort.SliceStable(songs, func(i, j int) bool {
		if songs[i].Frequency != songs[j].Frequency {
			return songs[i].Frequency > songs[j].Frequency
		}
		return songs[i].Popularity > songs[j].Popularity
	})

	if limit > 0 && len(songs) > limit {
		songs = songs[:limit]
	}
	return songs
}
