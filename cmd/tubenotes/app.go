package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tubenotes/internal/pipeline"
	"tubenotes/shared/ai"
	"tubenotes/shared/config"
	"tubenotes/shared/logging"
	"tubenotes/shared/notes"
	"tubenotes/shared/storage"
	"tubenotes/shared/transcript"
	"tubenotes/shared/youtube"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultPrompt = "다음 텍스트를 요약하고 정리해주세요:\n\n"

// Notes for summarized videos are tracked for a year before a video becomes
// eligible again.
const trackerMaxAge = 365 * 24 * time.Hour

// runFlags are the knobs both run and watch expose on top of the config
// file. Zero values defer to the config.
type runFlags struct {
	channelURL  string
	notesDir    string
	promptFile  string
	maxVideos   int
	minDuration int
	withShorts  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.channelURL, "channel", "", "Channel URL to summarize (overrides config)")
	cmd.Flags().StringVar(&f.notesDir, "notes-dir", "", "Directory to write notes into (overrides config)")
	cmd.Flags().StringVar(&f.promptFile, "prompt-file", "", "File holding the summarization prompt (overrides config)")
	cmd.Flags().IntVar(&f.maxVideos, "max-videos", 0, "Cap on how many videos to fetch (0 = whole catalog)")
	cmd.Flags().IntVar(&f.minDuration, "min-duration", 0, "Minimum video length in seconds (overrides config)")
	cmd.Flags().BoolVar(&f.withShorts, "include-shorts", false, "Include videos titled as shorts")
}

func (f *runFlags) apply(cfg *config.Config) {
	if f.channelURL != "" {
		cfg.YouTube.ChannelURL = f.channelURL
	}
	if f.notesDir != "" {
		cfg.Notes.Dir = f.notesDir
	}
	if f.promptFile != "" {
		cfg.Notes.PromptFile = f.promptFile
	}
	if f.minDuration > 0 {
		cfg.Pipeline.MinDurationSeconds = f.minDuration
	}
	if f.withShorts {
		cfg.Pipeline.IncludeShorts = true
	}
}

// app bundles the wired pipeline with everything the commands need to run it.
type app struct {
	cfg       *config.Config
	pipeline  *pipeline.Pipeline
	prompt    string
	maxVideos int
}

func newApp(ctx context.Context, flags *runFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)

	if cfg.YouTube.ChannelURL == "" {
		return nil, fmt.Errorf("channel URL is required (set youtube.channel_url or pass --channel)")
	}

	if err := logging.Setup(cfg.Logging.Dir); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	catalog, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	summarizer, err := ai.NewSummarizer(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model, cfg.AI.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}

	tracker, err := storage.NewNoteTracker(cfg.Pipeline.DataDir, trackerMaxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to open note tracker: %w", err)
	}

	p := pipeline.New(
		catalog,
		transcript.NewResolver(transcript.NewClient()),
		summarizer,
		notes.NewWriter(cfg.Notes.Dir),
		tracker,
		pipeline.Config{
			IncludeShorts:      cfg.Pipeline.IncludeShorts,
			MinDurationSeconds: cfg.Pipeline.MinDurationSeconds,
			PageSize:           cfg.YouTube.PageSize,
			MaxVideos:          flags.maxVideos,
		},
	)

	return &app{
		cfg:       cfg,
		pipeline:  p,
		prompt:    loadPrompt(cfg.Notes.PromptFile),
		maxVideos: flags.maxVideos,
	}, nil
}

// loadPrompt reads the user prompt from the configured file, falling back to
// the built-in default when the file is missing or empty.
func loadPrompt(path string) string {
	if path == "" {
		return defaultPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).Warnf("Could not read prompt file %s, using default prompt", path)
		return defaultPrompt
	}
	if len(data) == 0 {
		return defaultPrompt
	}
	return string(data)
}

// runOnce drives a full pipeline pass and drains its event stream. Events
// are already logged by the pipeline; here we only tally failures.
func (a *app) runOnce(ctx context.Context) error {
	events := a.pipeline.Start(ctx, a.cfg.YouTube.ChannelURL, a.prompt)

	var fetched, errorCount int
	for ev := range events {
		switch ev.Kind {
		case pipeline.EventVideosFetched:
			fetched = len(ev.Videos)
		case pipeline.EventError:
			errorCount++
		}
	}

	logrus.Infof("Run finished: %d videos fetched, %d errors", fetched, errorCount)
	if fetched == 0 && errorCount > 0 {
		return fmt.Errorf("run failed before any videos were fetched")
	}
	return nil
}

func (a *app) Name() string { return "tubenotes" }

// RunOnce satisfies the scheduler job interface.
func (a *app) RunOnce(ctx context.Context) error {
	return a.runOnce(ctx)
}
