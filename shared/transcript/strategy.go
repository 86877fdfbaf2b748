package transcript

import "tubenotes/internal/models"

var (
	koreanCodes   = []string{"ko", "ko-KR", "kor"}
	englishCodes  = []string{"en", "en-US", "en-GB"}
	koreanMarkers = []string{"ko", "kor", "korean"}
)

// strategy is one step of the fallback chain: try to select a track from the
// enumerated list. Selection returns errNoTrackFound to pass the turn to the
// next strategy.
type strategy struct {
	name        string
	selectTrack func(TrackList) (models.TranscriptTrack, error)
}

// fallbackStrategies is the fixed priority order for picking a caption
// track. Korean-first, degrading through auto-generated and machine-
// translated tracks so that some transcript is found whenever one exists.
func fallbackStrategies() []strategy {
	return []strategy{
		{"manual Korean", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FindManual(koreanCodes)
		}},
		{"generated Korean", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FindGenerated(koreanCodes)
		}},
		{"manual English", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FindManual(englishCodes)
		}},
		{"generated English", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FindGenerated(englishCodes)
		}},
		{"Korean direct scan", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FindLanguageLike(koreanMarkers)
		}},
		{"translated to Korean", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FirstTranslatable("ko")
		}},
		{"translated to English", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.FirstTranslatable("en")
		}},
		{"first available", func(tl TrackList) (models.TranscriptTrack, error) {
			return tl.First()
		}},
	}
}
