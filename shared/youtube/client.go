// Package youtube resolves channel references and pages through a channel's
// upload catalog using the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubenotes/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	// ErrChannelNotFound means the channel URL/handle could not be resolved
	// to a channel ID.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrChannelLookupFailed means the channel exists but its upload catalog
	// metadata could not be retrieved.
	ErrChannelLookupFailed = errors.New("channel lookup failed")
)

// catalogAPI is the slice of the Data API the client consumes. It exists so
// tests can substitute a synthetic catalog.
type catalogAPI interface {
	// searchChannel returns the top channel ID for a query, or
	// ErrChannelNotFound when the search yields no items.
	searchChannel(ctx context.Context, query string) (string, error)
	// uploadsPlaylistID resolves a channel's upload playlist.
	uploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	// playlistPage fetches one page of the upload listing in server order.
	playlistPage(ctx context.Context, playlistID string, pageSize int64, pageToken string) ([]models.VideoRef, string, error)
	// videoDurations maps video IDs (at most 50) to their ISO 8601 duration
	// codes.
	videoDurations(ctx context.Context, ids []string) (map[string]string, error)
}

// Client wraps the Data API for channel resolution and catalog paging.
type Client struct {
	api catalogAPI

	// uploads caches channelID -> uploads playlist ID so repeated page
	// requests cost one channels.list call per channel.
	uploads map[string]string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		api:     &dataAPI{service: service},
		uploads: make(map[string]string),
	}, nil
}

// dataAPI implements catalogAPI against the real service.
type dataAPI struct {
	service *youtube.Service
}

func (d *dataAPI) searchChannel(ctx context.Context, query string) (string, error) {
	call := d.service.Search.List([]string{"id"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", ErrChannelNotFound
	}
	return resp.Items[0].Id.ChannelId, nil
}

func (d *dataAPI) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	call := d.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no channel metadata for %s", channelID)
	}

	channel := resp.Items[0]
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil ||
		channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist", channelID)
	}
	return channel.ContentDetails.RelatedPlaylists.Uploads, nil
}

func (d *dataAPI) playlistPage(ctx context.Context, playlistID string, pageSize int64, pageToken string) ([]models.VideoRef, string, error) {
	call := d.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		PageToken(pageToken).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, "", err
	}

	var refs []models.VideoRef
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
			continue
		}
		refs = append(refs, models.VideoRef{
			ID:    item.Snippet.ResourceId.VideoId,
			Title: item.Snippet.Title,
		})
	}
	return refs, resp.NextPageToken, nil
}

func (d *dataAPI) videoDurations(ctx context.Context, ids []string) (map[string]string, error) {
	call := d.service.Videos.List([]string{"contentDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	durations := make(map[string]string, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil {
			continue
		}
		durations[item.Id] = item.ContentDetails.Duration
	}
	return durations, nil
}
