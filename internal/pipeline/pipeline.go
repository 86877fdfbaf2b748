// Package pipeline orchestrates the channel-to-notes run: catalog paging,
// transcript resolution, batch summarization and note persistence, reporting
// progress through an ordered event channel.
package pipeline

import (
	"context"
	"fmt"

	"tubenotes/internal/models"
	"tubenotes/shared/youtube"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Catalog pages through a channel's uploads.
type Catalog interface {
	ResolveChannelID(ctx context.Context, url string) (string, error)
	ListPage(ctx context.Context, req youtube.ListPageRequest) (*youtube.CatalogPage, error)
}

// TranscriptSource resolves one video's transcript.
type TranscriptSource interface {
	GetTranscript(ctx context.Context, videoID string) (models.TranscriptResult, error)
}

// Summarizer processes task batches against the model.
type Summarizer interface {
	ProcessBatch(ctx context.Context, tasks []models.SummarizationTask) []models.SummarizationResult
	BatchSize() int
}

// NoteSaver persists one note and returns the path written.
type NoteSaver interface {
	Save(content string) (string, error)
}

// Tracker remembers which videos already have notes.
type Tracker interface {
	IsSummarized(videoID string) bool
	MarkSummarized(videoID string) error
}

// Config carries the per-run knobs.
type Config struct {
	IncludeShorts      bool
	MinDurationSeconds int
	PageSize           int64
	// MaxVideos caps how many catalog entries a run fetches; 0 means the
	// whole catalog.
	MaxVideos int
}

// Pipeline wires the stages together. All external calls are sequential;
// the only concurrency is the worker goroutine feeding the event channel.
type Pipeline struct {
	catalog     Catalog
	transcripts TranscriptSource
	summarizer  Summarizer
	notes       NoteSaver
	tracker     Tracker // optional
	cfg         Config
}

func New(catalog Catalog, transcripts TranscriptSource, summarizer Summarizer, notes NoteSaver, tracker Tracker, cfg Config) *Pipeline {
	return &Pipeline{
		catalog:     catalog,
		transcripts: transcripts,
		summarizer:  summarizer,
		notes:       notes,
		tracker:     tracker,
		cfg:         cfg,
	}
}

// FetchVideos resolves the channel and pulls catalog pages until the
// configured cap or exhaustion, preserving listing order.
func (p *Pipeline) FetchVideos(ctx context.Context, channelURL string) ([]models.VideoDetail, error) {
	channelID, err := p.catalog.ResolveChannelID(ctx, channelURL)
	if err != nil {
		return nil, err
	}

	var videos []models.VideoDetail
	pageToken := ""
	for {
		if err := ctx.Err(); err != nil {
			return videos, err
		}

		page, err := p.catalog.ListPage(ctx, youtube.ListPageRequest{
			ChannelID:          channelID,
			IncludeShorts:      p.cfg.IncludeShorts,
			MinDurationSeconds: p.cfg.MinDurationSeconds,
			MaxResults:         p.cfg.PageSize,
			PageToken:          pageToken,
		})
		if err != nil {
			return nil, err
		}

		videos = append(videos, page.Videos...)
		if p.cfg.MaxVideos > 0 && len(videos) >= p.cfg.MaxVideos {
			videos = videos[:p.cfg.MaxVideos]
			break
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return videos, nil
}

// Start runs the whole pipeline on a worker goroutine: fetch, summarize,
// persist. The returned channel is closed after the final EventDone; the
// caller owns consumption and may poll at its own pace.
func (p *Pipeline) Start(ctx context.Context, channelURL, userPrompt string) <-chan Event {
	events := make(chan Event, 64)
	runID := uuid.NewString()

	go func() {
		defer close(events)

		videos, err := p.FetchVideos(ctx, channelURL)
		if err != nil {
			events <- Event{RunID: runID, Kind: EventError, Message: fmt.Sprintf("failed to fetch video list: %v", err)}
			events <- Event{RunID: runID, Kind: EventDone, Message: "run aborted"}
			return
		}
		events <- Event{RunID: runID, Kind: EventVideosFetched, Videos: videos}

		p.process(ctx, runID, videos, userPrompt, events)
	}()

	return events
}

// Process summarizes an already-selected set of videos on a worker
// goroutine. Used when the caller did its own selection over a fetched
// catalog.
func (p *Pipeline) Process(ctx context.Context, videos []models.VideoDetail, userPrompt string) <-chan Event {
	events := make(chan Event, 64)
	runID := uuid.NewString()

	go func() {
		defer close(events)
		p.process(ctx, runID, videos, userPrompt, events)
	}()

	return events
}

func (p *Pipeline) process(ctx context.Context, runID string, videos []models.VideoDetail, userPrompt string, events chan<- Event) {
	log := logrus.WithField("run_id", runID)

	emitLog := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Info(msg)
		events <- Event{RunID: runID, Kind: EventLog, Message: msg}
	}
	emitError := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Error(msg)
		events <- Event{RunID: runID, Kind: EventError, Message: msg}
	}

	batchSize := p.summarizer.BatchSize()
	total := len(videos)

	titles := make(map[string]string, total)
	for _, v := range videos {
		titles[v.ID] = v.Title
	}

	for start := 0; start < total; start += batchSize {
		// Coarse cancellation: finish or skip whole units of work, never
		// abort one mid-flight.
		if ctx.Err() != nil {
			emitError("run cancelled: %v", ctx.Err())
			break
		}

		end := start + batchSize
		if end > total {
			end = total
		}
		emitLog("--- Processing batch %d-%d of %d ---", start+1, end, total)

		tasks := p.prepareTasks(ctx, videos[start:end], userPrompt, emitLog, emitError)
		if len(tasks) == 0 {
			emitLog("No tasks to process in this batch")
			continue
		}

		emitLog("Submitting %d tasks to the summarizer", len(tasks))
		results := p.summarizer.ProcessBatch(ctx, tasks)

		resultsByID := make(map[string]string, len(results))
		for _, r := range results {
			resultsByID[r.ID] = r.Result
		}

		for _, task := range tasks {
			title := titles[task.ID]
			content, ok := resultsByID[task.ID]
			if !ok {
				// A well-formed batch response omitted this task; surfaced,
				// never papered over.
				emitError("no result for %q (task %s omitted from batch response)", title, task.ID)
				continue
			}

			path, err := p.notes.Save(content)
			if err != nil {
				emitError("failed to save note for %q: %v", title, err)
				continue
			}
			emitLog("Saved note for %q: %s", title, path)

			if p.tracker != nil {
				if err := p.tracker.MarkSummarized(task.ID); err != nil {
					log.WithError(err).WithField("video_id", task.ID).Warn("Failed to record summarized video")
				}
			}
		}
	}

	events <- Event{RunID: runID, Kind: EventDone, Message: "all work completed"}
}

// prepareTasks resolves transcripts for one batch of videos and builds the
// summarization tasks. Videos without a usable transcript are logged and
// skipped.
func (p *Pipeline) prepareTasks(ctx context.Context, videos []models.VideoDetail, userPrompt string, emitLog, emitError func(string, ...any)) []models.SummarizationTask {
	var tasks []models.SummarizationTask
	for _, video := range videos {
		if ctx.Err() != nil {
			return tasks
		}

		if p.tracker != nil && p.tracker.IsSummarized(video.ID) {
			emitLog("Skipping %q: note already exists", video.Title)
			continue
		}

		emitLog("Preparing transcript for %q", video.Title)
		transcript, err := p.transcripts.GetTranscript(ctx, video.ID)
		if err != nil {
			emitError("transcript resolution failed for %q: %v", video.Title, err)
			continue
		}
		if !transcript.Found() {
			emitLog("Skipping %q: no transcript found", video.Title)
			continue
		}

		tasks = append(tasks, models.SummarizationTask{
			ID:     video.ID,
			Prompt: buildTaskPrompt(video.Title, userPrompt, transcript.Text),
		})
	}
	return tasks
}

func buildTaskPrompt(title, userPrompt, transcript string) string {
	return fmt.Sprintf("영상 제목: %s\n\n%s\n\n--- 원본 스크립트 ---\n%s\n--- 원본 스크립트 끝 ---",
		title, userPrompt, transcript)
}
