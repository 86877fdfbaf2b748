package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tubenotes/internal/models"
	"tubenotes/shared/youtube"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	pages      map[string]*youtube.CatalogPage
	resolveErr error
	listErr    error
}

func (f *fakeCatalog) ResolveChannelID(ctx context.Context, url string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "UCabcdefghijklmnopqrstuv", nil
}

func (f *fakeCatalog) ListPage(ctx context.Context, req youtube.ListPageRequest) (*youtube.CatalogPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page, ok := f.pages[req.PageToken]
	if !ok {
		return &youtube.CatalogPage{}, nil
	}
	return page, nil
}

type fakeTranscripts struct {
	byID  map[string]models.TranscriptResult
	errID map[string]error
	calls []string
}

func (f *fakeTranscripts) GetTranscript(ctx context.Context, videoID string) (models.TranscriptResult, error) {
	f.calls = append(f.calls, videoID)
	if err, ok := f.errID[videoID]; ok {
		return models.TranscriptResult{}, err
	}
	return f.byID[videoID], nil
}

type fakeSummarizer struct {
	batchSize int
	calls     [][]models.SummarizationTask
	omit      map[string]bool
}

func (f *fakeSummarizer) BatchSize() int { return f.batchSize }

func (f *fakeSummarizer) ProcessBatch(ctx context.Context, tasks []models.SummarizationTask) []models.SummarizationResult {
	f.calls = append(f.calls, tasks)
	var results []models.SummarizationResult
	for _, task := range tasks {
		if f.omit[task.ID] {
			continue
		}
		results = append(results, models.SummarizationResult{ID: task.ID, Result: "summary of " + task.ID})
	}
	return results
}

type fakeNotes struct {
	saved   []string
	saveErr error
}

func (f *fakeNotes) Save(content string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, content)
	return fmt.Sprintf("/notes/note-%d.md", len(f.saved)), nil
}

type fakeTracker struct {
	done   map[string]bool
	marked []string
}

func (f *fakeTracker) IsSummarized(videoID string) bool { return f.done[videoID] }

func (f *fakeTracker) MarkSummarized(videoID string) error {
	f.marked = append(f.marked, videoID)
	return nil
}

func detail(id, title string, seconds int) models.VideoDetail {
	return models.VideoDetail{
		VideoRef:     models.VideoRef{ID: id, Title: title},
		TotalSeconds: seconds,
	}
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	for ev := range events {
		all = append(all, ev)
	}
	require.NotEmpty(t, all, "a run always produces events")
	return all
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func transcriptFor(text string, segments int) models.TranscriptResult {
	return models.TranscriptResult{Text: text, SegmentCount: segments}
}

func TestStartHappyPath(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string]*youtube.CatalogPage{
		"": {
			Videos:        []models.VideoDetail{detail("v1", "First", 600), detail("v2", "Second", 300)},
			NextPageToken: "p2",
		},
		"p2": {
			Videos: []models.VideoDetail{detail("v3", "Third", 240)},
		},
	}}
	transcripts := &fakeTranscripts{byID: map[string]models.TranscriptResult{
		"v1": transcriptFor("text one", 3),
		"v2": transcriptFor("text two", 5),
		"v3": transcriptFor("text three", 2),
	}}
	summarizer := &fakeSummarizer{batchSize: 30}
	notes := &fakeNotes{}
	tracker := &fakeTracker{done: map[string]bool{}}

	p := New(catalog, transcripts, summarizer, notes, tracker, Config{PageSize: 50})
	events := drain(t, p.Start(context.Background(), "https://www.youtube.com/@chan", "summarize this"))

	require.Equal(t, EventVideosFetched, events[0].Kind, "catalog must be announced first")
	assert.Len(t, events[0].Videos, 3, "both pages consumed")
	assert.Equal(t, EventDone, events[len(events)-1].Kind, "runs always conclude with a done event")
	assert.NotContains(t, kinds(events), EventError)

	assert.Len(t, notes.saved, 3)
	assert.ElementsMatch(t, []string{"v1", "v2", "v3"}, tracker.marked)

	runID := events[0].RunID
	require.NotEmpty(t, runID)
	for _, ev := range events {
		assert.Equal(t, runID, ev.RunID, "all events of a run share its id")
	}

	require.Len(t, summarizer.calls, 1)
	assert.Contains(t, summarizer.calls[0][0].Prompt, "영상 제목: First")
	assert.Contains(t, summarizer.calls[0][0].Prompt, "text one")
}

func TestStartFetchFailure(t *testing.T) {
	catalog := &fakeCatalog{resolveErr: youtube.ErrChannelNotFound}
	p := New(catalog, &fakeTranscripts{}, &fakeSummarizer{batchSize: 30}, &fakeNotes{}, nil, Config{})

	events := drain(t, p.Start(context.Background(), "https://example.com/nope", "prompt"))
	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[0].Kind)
	assert.Equal(t, EventDone, events[1].Kind)
}

func TestProcessSkipsVideosWithoutTranscript(t *testing.T) {
	transcripts := &fakeTranscripts{byID: map[string]models.TranscriptResult{
		"v1": transcriptFor("only this one", 1),
		// v2 resolves to the empty result
	}}
	summarizer := &fakeSummarizer{batchSize: 30}
	notes := &fakeNotes{}

	p := New(&fakeCatalog{}, transcripts, summarizer, notes, nil, Config{})
	videos := []models.VideoDetail{detail("v1", "Has transcript", 300), detail("v2", "Silent", 300)}
	events := drain(t, p.Process(context.Background(), videos, "prompt"))

	require.Len(t, summarizer.calls, 1)
	require.Len(t, summarizer.calls[0], 1)
	assert.Equal(t, "v1", summarizer.calls[0][0].ID)
	assert.Len(t, notes.saved, 1)
	assert.NotContains(t, kinds(events), EventError, "a missing transcript is a skip, not an error")
}

func TestProcessTranscriptErrorContinues(t *testing.T) {
	transcripts := &fakeTranscripts{
		byID:  map[string]models.TranscriptResult{"v2": transcriptFor("works", 1)},
		errID: map[string]error{"v1": errors.New("connection reset")},
	}
	summarizer := &fakeSummarizer{batchSize: 30}
	notes := &fakeNotes{}

	p := New(&fakeCatalog{}, transcripts, summarizer, notes, nil, Config{})
	videos := []models.VideoDetail{detail("v1", "Broken", 300), detail("v2", "Fine", 300)}
	events := drain(t, p.Process(context.Background(), videos, "prompt"))

	assert.Contains(t, kinds(events), EventError)
	assert.Equal(t, EventDone, events[len(events)-1].Kind, "run concludes despite the failure")
	assert.Len(t, notes.saved, 1)
}

func TestProcessSurfacesOmittedTasks(t *testing.T) {
	transcripts := &fakeTranscripts{byID: map[string]models.TranscriptResult{
		"v1": transcriptFor("a", 1),
		"v2": transcriptFor("b", 1),
	}}
	summarizer := &fakeSummarizer{batchSize: 30, omit: map[string]bool{"v2": true}}
	notes := &fakeNotes{}

	p := New(&fakeCatalog{}, transcripts, summarizer, notes, nil, Config{})
	videos := []models.VideoDetail{detail("v1", "Answered", 300), detail("v2", "Dropped", 300)}
	events := drain(t, p.Process(context.Background(), videos, "prompt"))

	assert.Len(t, notes.saved, 1)

	var omissionReported bool
	for _, ev := range events {
		if ev.Kind == EventError {
			assert.Contains(t, ev.Message, "Dropped")
			omissionReported = true
		}
	}
	assert.True(t, omissionReported, "an omitted task id must surface as an error event")
}

func TestProcessRespectsTracker(t *testing.T) {
	transcripts := &fakeTranscripts{byID: map[string]models.TranscriptResult{
		"v2": transcriptFor("new content", 1),
	}}
	tracker := &fakeTracker{done: map[string]bool{"v1": true}}
	summarizer := &fakeSummarizer{batchSize: 30}
	notes := &fakeNotes{}

	p := New(&fakeCatalog{}, transcripts, summarizer, notes, tracker, Config{})
	videos := []models.VideoDetail{detail("v1", "Old", 300), detail("v2", "New", 300)}
	drain(t, p.Process(context.Background(), videos, "prompt"))

	assert.NotContains(t, transcripts.calls, "v1", "already-summarized videos skip transcript resolution")
	assert.Equal(t, []string{"v2"}, tracker.marked)
}

func TestProcessBatchGrouping(t *testing.T) {
	byID := make(map[string]models.TranscriptResult)
	var videos []models.VideoDetail
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("v%d", i)
		byID[id] = transcriptFor("text "+id, 1)
		videos = append(videos, detail(id, "Video "+id, 300))
	}

	summarizer := &fakeSummarizer{batchSize: 2}
	p := New(&fakeCatalog{}, &fakeTranscripts{byID: byID}, summarizer, &fakeNotes{}, nil, Config{})
	drain(t, p.Process(context.Background(), videos, "prompt"))

	require.Len(t, summarizer.calls, 3, "5 videos at batch size 2 means 3 batches")
	assert.Len(t, summarizer.calls[0], 2)
	assert.Len(t, summarizer.calls[1], 2)
	assert.Len(t, summarizer.calls[2], 1)
}

func TestFetchVideosHonorsMaxVideos(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string]*youtube.CatalogPage{
		"": {
			Videos:        []models.VideoDetail{detail("v1", "a", 300), detail("v2", "b", 300)},
			NextPageToken: "p2",
		},
		"p2": {
			Videos:        []models.VideoDetail{detail("v3", "c", 300)},
			NextPageToken: "p3",
		},
	}}

	p := New(catalog, &fakeTranscripts{}, &fakeSummarizer{batchSize: 30}, &fakeNotes{}, nil, Config{MaxVideos: 3, PageSize: 50})
	videos, err := p.FetchVideos(context.Background(), "https://www.youtube.com/@chan")
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "v3", videos[2].ID)
}
