package youtube

import (
	"context"
	"fmt"
	"strings"

	"tubenotes/internal/duration"
	"tubenotes/internal/models"

	"github.com/sirupsen/logrus"
)

// detailBatchSize is the videos.list per-call ID limit.
const detailBatchSize = 50

// shortsSuffix marks shorts in upload playlist titles.
const shortsSuffix = "#shorts"

// ListPageRequest selects one catalog page.
type ListPageRequest struct {
	ChannelID          string
	IncludeShorts      bool
	MinDurationSeconds int
	MaxResults         int64
	PageToken          string
}

// CatalogPage is one filtered page of a channel's uploads, in the server's
// listing order. An empty NextPageToken means the catalog is exhausted.
type CatalogPage struct {
	Videos        []models.VideoDetail
	NextPageToken string
}

// ListPage fetches one page of the channel's upload catalog, filters out
// shorts and videos below the minimum duration, and resolves duration
// metadata in batches. A failed channel lookup is fatal for the call; a
// failed duration batch only drops that batch's videos.
func (c *Client) ListPage(ctx context.Context, req ListPageRequest) (*CatalogPage, error) {
	playlistID, err := c.resolveUploads(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	pageSize := req.MaxResults
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}

	refs, nextToken, err := c.api.playlistPage(ctx, playlistID, pageSize, req.PageToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads for channel %s: %w", req.ChannelID, err)
	}

	var kept []models.VideoRef
	for _, ref := range refs {
		if !req.IncludeShorts && strings.HasSuffix(strings.TrimSpace(ref.Title), shortsSuffix) {
			continue
		}
		kept = append(kept, ref)
	}

	durations := c.lookupDurations(ctx, kept)

	// Reassemble in the original listing order; batched lookups do not
	// guarantee it.
	videos := make([]models.VideoDetail, 0, len(kept))
	for _, ref := range kept {
		code, ok := durations[ref.ID]
		if !ok {
			continue
		}
		totalSeconds := duration.ParseSeconds(code)
		if totalSeconds < req.MinDurationSeconds {
			continue
		}
		videos = append(videos, models.VideoDetail{
			VideoRef:     ref,
			Duration:     duration.FormatClock(totalSeconds),
			TotalSeconds: totalSeconds,
		})
	}

	return &CatalogPage{Videos: videos, NextPageToken: nextToken}, nil
}

func (c *Client) resolveUploads(ctx context.Context, channelID string) (string, error) {
	if playlistID, ok := c.uploads[channelID]; ok {
		return playlistID, nil
	}

	playlistID, err := c.api.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrChannelLookupFailed, channelID, err)
	}

	c.uploads[channelID] = playlistID
	return playlistID, nil
}

// lookupDurations batch-resolves ISO duration codes for the given refs in
// chunks of at most detailBatchSize. A failed chunk is logged and skipped so
// the rest of the page survives.
func (c *Client) lookupDurations(ctx context.Context, refs []models.VideoRef) map[string]string {
	durations := make(map[string]string, len(refs))

	for start := 0; start < len(refs); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(refs) {
			end = len(refs)
		}

		ids := make([]string, 0, end-start)
		for _, ref := range refs[start:end] {
			ids = append(ids, ref.ID)
		}

		chunk, err := c.api.videoDurations(ctx, ids)
		if err != nil {
			logrus.WithError(err).WithField("ids", ids).Warn("Duration lookup failed for chunk, skipping")
			continue
		}
		for id, code := range chunk {
			durations[id] = code
		}
	}

	return durations
}
