package services

import (
	"fmt"
	"sort"
	"strings"

	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
)

var chromaticKeys = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var genreTable = []string{
	"Pop", "Rock", "Hip-Hop", "Electronic", "R&B",
	"Country", "Jazz", "Latin", "Reggae", "Blues",
}

// AnalysisService derives synthetic track features and scores recommendations.
// Everything here is a pure function of its inputs; the same track name and
// artist always produce the same features, which is what makes duplicate
// submissions and replayed requests converge on identical metadata.
type AnalysisService struct {
	log logger.Logger
}

func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		log: logger.New("analysisService"),
	}
}

// trackHash folds the concatenated track and artist name into a non-negative
// integer using 32-bit wrapping h = h*31 + codepoint.
func trackHash(trackName, artistName string) int {
	var h int32
	for _, r := range trackName + artistName {
		h = h*31 + int32(r)
	}
	hash := int(h)
	if hash < 0 {
		hash = -hash
	}
	return hash
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeriveSyntheticFeatures computes the stand-in audio analysis for a track.
// There is no real audio pipeline behind this; the values are hash-derived so
// they are stable, plausible, and free.
func (s *AnalysisService) DeriveSyntheticFeatures(trackName, artistName string) TrackAnalysis {
	hash := trackHash(trackName, artistName)

	bpm := clampInt(60+hash%120, 60, 180)
	energy := clampFloat(30+float64(bpm-60)/2+float64(hash%30), 0, 100)
	danceability := clampFloat(energy*0.8+float64(hash%20), 0, 100)

	genres := []string{genreTable[hash%len(genreTable)]}
	if secondary := genreTable[(hash+7)%len(genreTable)]; hash%3 == 0 && secondary != genres[0] {
		genres = append(genres, secondary)
	}

	return TrackAnalysis{
		BPM:          bpm,
		Key:          chromaticKeys[hash%len(chromaticKeys)],
		Energy:       int(energy + 0.5),
		Danceability: int(danceability + 0.5),
		Genre:        genres,
	}
}

// Recommendation is the scored best-next-track pick.
type Recommendation struct {
	RequestID          uuid.UUID     `json:"requestId"`
	TrackName          string        `json:"trackName"`
	ArtistName         string        `json:"artistName"`
	CompatibilityScore int           `json:"compatibilityScore"`
	Reason             string        `json:"reason"`
	Analysis           TrackAnalysis `json:"analysis"`
}

type scoredCandidate struct {
	request       SongRequest
	analysis      TrackAnalysis
	compatibility float64
	total         float64
}

// BestNext picks the candidate that flows best after the current track.
// Compatibility is 100 minus weighted BPM and energy distance (or a flat 100
// when nothing is playing); crowd votes add up to 20 bonus points. Returns
// nil when the candidate pool is empty.
func (s *AnalysisService) BestNext(candidates []SongRequest, current *TrackAnalysis) *Recommendation {
	if len(candidates) == 0 {
		return nil
	}

	currentBPM, currentEnergy := 120.0, 75.0
	if current != nil {
		if current.BPM != 0 {
			currentBPM = float64(current.BPM)
		}
		if current.Energy != 0 {
			currentEnergy = float64(current.Energy)
		}
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, request := range candidates {
		analysis := s.DeriveSyntheticFeatures(request.TrackName, request.ArtistName)

		compatibility := 100.0
		if current != nil {
			bpmDiff := absFloat(currentBPM - float64(analysis.BPM))
			energyDiff := absFloat(currentEnergy - float64(analysis.Energy))
			compatibility = clampFloat(100-bpmDiff*0.5-energyDiff*0.3, 0, 100)
		}

		bonus := float64(request.VoteCount * 5)
		if bonus > 20 {
			bonus = 20
		}

		scored = append(scored, scoredCandidate{
			request:       request,
			analysis:      analysis,
			compatibility: compatibility,
			total:         compatibility + bonus,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].total > scored[j].total
	})
	best := scored[0]

	var reasons []string
	if best.compatibility >= 80 {
		reasons = append(reasons, "Perfect musical match")
	}
	if best.request.VoteCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d crowd votes", best.request.VoteCount))
	}
	if current != nil && absFloat(currentBPM-float64(best.analysis.BPM)) <= 5 {
		reasons = append(reasons, "Similar tempo")
	}

	reason := strings.Join(reasons, ", ")
	if reason == "" {
		reason = "Good fit for current vibe"
	}

	return &Recommendation{
		RequestID:          best.request.ID,
		TrackName:          best.request.TrackName,
		ArtistName:         best.request.ArtistName,
		CompatibilityScore: int(best.compatibility + 0.5),
		Reason:             reason,
		Analysis:           best.analysis,
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
