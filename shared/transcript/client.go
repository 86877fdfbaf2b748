// Package transcript enumerates caption tracks for a video and resolves one
// transcript through an ordered fallback over languages, generation methods
// and machine translation.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubenotes/internal/models"

	"golang.org/x/time/rate"
)

const (
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

	clientName    = "WEB"
	clientVersion = "2.20240101.00.00"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	// ErrTranscriptsDisabled means the video exposes no caption surface at
	// all (captions turned off by the uploader).
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	// ErrNoTranscript means the video has a caption surface but no tracks.
	ErrNoTranscript = errors.New("no transcript available")
	// errNoTrackFound signals a single strategy found nothing; the chain
	// moves on.
	errNoTrackFound = errors.New("no track found")
)

// Client talks to YouTube's player and timedtext endpoints. All outbound
// requests share one rate limiter so the sequential pipeline stays polite.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	playerURL  string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		playerURL:  playerEndpoint,
	}
}

type playerRequest struct {
	Context clientContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type clientContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl"`
	GL            string `json:"gl"`
}

type playerResponse struct {
	Captions *struct {
		Renderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionsRenderer struct {
	CaptionTracks []captionTrack `json:"captionTracks"`
}

type captionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           trackName `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"` // "asr" marks auto-generated tracks
	IsTranslatable bool      `json:"isTranslatable"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) text() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var b strings.Builder
	for _, run := range n.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// ListTracks enumerates the caption tracks available for a video. It returns
// ErrTranscriptsDisabled when the video has no caption surface and
// ErrNoTranscript when the surface is present but empty.
func (c *Client) ListTracks(ctx context.Context, videoID string) (TrackList, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}

	body, err := json.Marshal(playerRequest{
		Context: clientContext{
			Client: innertubeClient{
				ClientName:    clientName,
				ClientVersion: clientVersion,
				HL:            "en",
				GL:            "US",
			},
		},
		VideoID: videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, c.playerURL, body)
	if err != nil {
		return nil, fmt.Errorf("player request for %s: %w", videoID, err)
	}

	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse player response for %s: %w", videoID, err)
	}

	if resp.Captions == nil || resp.Captions.Renderer == nil {
		return nil, ErrTranscriptsDisabled
	}
	if len(resp.Captions.Renderer.CaptionTracks) == 0 {
		return nil, ErrNoTranscript
	}

	tracks := make(TrackList, 0, len(resp.Captions.Renderer.CaptionTracks))
	for _, ct := range resp.Captions.Renderer.CaptionTracks {
		tracks = append(tracks, models.TranscriptTrack{
			LanguageCode:   ct.LanguageCode,
			DisplayName:    ct.Name.text(),
			IsGenerated:    ct.Kind == "asr",
			IsTranslatable: ct.IsTranslatable,
			BaseURL:        ct.BaseURL,
		})
	}
	return tracks, nil
}

// timedtextResponse mirrors the json3 timedtext payload: a flat list of
// events, each carrying text segments.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	Segs []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// Segment is one transcript segment in playback order.
type Segment struct {
	Text string
}

// FetchSegments downloads a track's content. For tracks tagged with a
// translation target the request asks the endpoint for a machine-translated
// rendition.
func (c *Client) FetchSegments(ctx context.Context, track models.TranscriptTrack) ([]Segment, error) {
	if track.BaseURL == "" {
		return nil, fmt.Errorf("track has no fetch URL")
	}

	fetchURL := track.BaseURL + "&fmt=json3"
	if track.TranslateTo != "" {
		fetchURL += "&tlang=" + track.TranslateTo
	}

	data, err := c.do(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("timedtext request: %w", err)
	}

	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse timedtext response: %w", err)
	}

	var segments []Segment
	for _, event := range resp.Events {
		// Events without segments are window styling, not transcript text.
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		segments = append(segments, Segment{Text: text.String()})
	}
	return segments, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
