package models

// VideoRef identifies one catalog entry. Identity is the video ID; refs are
// immutable once produced by the catalog pager.
type VideoRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoDetail extends a VideoRef with duration metadata resolved from the
// videos endpoint.
type VideoDetail struct {
	VideoRef
	Duration     string `json:"duration"`
	TotalSeconds int    `json:"total_seconds"`
}

// TranscriptTrack describes one caption track available for a video.
// Tracks are enumerated per video and never persisted.
type TranscriptTrack struct {
	LanguageCode   string `json:"language_code"`
	DisplayName    string `json:"display_name"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`

	// BaseURL is the timedtext fetch URL for this track.
	BaseURL string `json:"-"`

	// TranslateTo, when set, makes the fetch a machine translation of the
	// track into the given language.
	TranslateTo string `json:"-"`
}

// TranscriptResult is the outcome of transcript resolution for one video.
// An empty Text signals that no usable transcript was found; SegmentCount
// is 0 in that case.
type TranscriptResult struct {
	Text         string `json:"text"`
	SegmentCount int    `json:"segment_count"`
}

// Found reports whether a usable transcript was resolved.
func (r TranscriptResult) Found() bool {
	return r.Text != ""
}
