package transcript

import (
	"context"
	"errors"
	"strings"

	"tubenotes/internal/models"

	"github.com/sirupsen/logrus"
)

// trackSource abstracts the client so the resolver can be exercised against
// synthetic track sets.
type trackSource interface {
	ListTracks(ctx context.Context, videoID string) (TrackList, error)
	FetchSegments(ctx context.Context, track models.TranscriptTrack) ([]Segment, error)
}

// Resolver turns a video ID into a flattened transcript by walking the
// fallback strategy chain.
type Resolver struct {
	source     trackSource
	strategies []strategy
}

func NewResolver(client *Client) *Resolver {
	return newResolver(client)
}

func newResolver(source trackSource) *Resolver {
	return &Resolver{source: source, strategies: fallbackStrategies()}
}

// GetTranscript resolves one video's transcript. Videos with captions
// disabled or absent yield an empty result and a nil error; a transient
// enumeration failure is returned to the caller, which logs and moves on to
// the next video. No strategy failure is fatal: the chain only gives up by
// exhaustion.
func (r *Resolver) GetTranscript(ctx context.Context, videoID string) (models.TranscriptResult, error) {
	log := logrus.WithField("video_id", videoID)

	tracks, err := r.source.ListTracks(ctx, videoID)
	if err != nil {
		if errors.Is(err, ErrTranscriptsDisabled) || errors.Is(err, ErrNoTranscript) {
			log.Info("No transcript available")
			return models.TranscriptResult{}, nil
		}
		return models.TranscriptResult{}, err
	}

	log.WithField("tracks", len(tracks)).Info("Enumerated caption tracks")

	for _, s := range r.strategies {
		track, err := s.selectTrack(tracks)
		if errors.Is(err, errNoTrackFound) {
			continue
		}
		if err != nil {
			log.WithError(err).WithField("strategy", s.name).Warn("Track selection failed, trying next strategy")
			continue
		}

		segments, err := r.source.FetchSegments(ctx, track)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"strategy": s.name,
				"language": track.LanguageCode,
			}).Warn("Transcript fetch failed, trying next strategy")
			continue
		}

		result := flatten(segments, log)
		if !result.Found() {
			// A selected track with no usable text terminates the search;
			// the video simply has nothing to transcribe.
			return models.TranscriptResult{}, nil
		}

		log.WithFields(logrus.Fields{
			"strategy": s.name,
			"language": track.LanguageCode,
			"segments": result.SegmentCount,
		}).Info("Transcript resolved")
		return result, nil
	}

	log.Info("All transcript strategies exhausted")
	return models.TranscriptResult{}, nil
}

// flatten concatenates segment texts with single spaces, preserving order.
// Segments without extractable text are logged and dropped; the reported
// segment count is the count before the drop.
func flatten(segments []Segment, log *logrus.Entry) models.TranscriptResult {
	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			log.WithField("segment", i).Debug("Dropping segment without text")
			continue
		}
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return models.TranscriptResult{}
	}

	return models.TranscriptResult{
		Text:         strings.Join(parts, " "),
		SegmentCount: len(segments),
	}
}
