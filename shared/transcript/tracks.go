package transcript

import (
	"strings"

	"tubenotes/internal/models"
)

// TrackList is the set of caption tracks enumerated for one video, in the
// order the player reported them.
type TrackList []models.TranscriptTrack

// FindManual returns the first manually-created track whose language code is
// in langs, honoring the order of langs.
func (tl TrackList) FindManual(langs []string) (models.TranscriptTrack, error) {
	return tl.find(langs, false)
}

// FindGenerated returns the first auto-generated track whose language code is
// in langs, honoring the order of langs.
func (tl TrackList) FindGenerated(langs []string) (models.TranscriptTrack, error) {
	return tl.find(langs, true)
}

func (tl TrackList) find(langs []string, generated bool) (models.TranscriptTrack, error) {
	for _, lang := range langs {
		for _, track := range tl {
			if track.IsGenerated == generated && strings.EqualFold(track.LanguageCode, lang) {
				return track, nil
			}
		}
	}
	return models.TranscriptTrack{}, errNoTrackFound
}

// FindLanguageLike scans for any track whose language code contains one of
// the markers, case-insensitively.
func (tl TrackList) FindLanguageLike(markers []string) (models.TranscriptTrack, error) {
	for _, track := range tl {
		code := strings.ToLower(track.LanguageCode)
		for _, marker := range markers {
			if strings.Contains(code, marker) {
				return track, nil
			}
		}
	}
	return models.TranscriptTrack{}, errNoTrackFound
}

// FirstTranslatable returns the first translatable track tagged for machine
// translation into target.
func (tl TrackList) FirstTranslatable(target string) (models.TranscriptTrack, error) {
	for _, track := range tl {
		if track.IsTranslatable {
			track.TranslateTo = target
			return track, nil
		}
	}
	return models.TranscriptTrack{}, errNoTrackFound
}

// First returns the first enumerated track regardless of language.
func (tl TrackList) First() (models.TranscriptTrack, error) {
	if len(tl) == 0 {
		return models.TranscriptTrack{}, errNoTrackFound
	}
	return tl[0], nil
}
