package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube  YouTubeConfig  `yaml:"youtube"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Notes    NotesConfig    `yaml:"notes"`
	Logging  LoggingConfig  `yaml:"logging"`
	Schedule string         `yaml:"schedule"`
}

type YouTubeConfig struct {
	APIKey     string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ChannelURL string `yaml:"channel_url"`
	// PageSize is the playlist page size requested from the catalog API.
	PageSize int64 `yaml:"page_size"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
	BatchSize    int    `yaml:"batch_size"`
}

type PipelineConfig struct {
	MinDurationSeconds int    `yaml:"min_video_duration"`
	IncludeShorts      bool   `yaml:"include_shorts"`
	DataDir            string `yaml:"data_dir"`
}

type NotesConfig struct {
	Dir        string `yaml:"dir"`
	PromptFile string `yaml:"prompt_file"`
}

type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case os.IsNotExist(err):
		// Config file is optional; env vars and defaults carry the rest.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.BatchSize <= 0 {
		c.AI.BatchSize = 30
	}
	if c.YouTube.PageSize <= 0 || c.YouTube.PageSize > 50 {
		c.YouTube.PageSize = 50
	}
	if c.Pipeline.MinDurationSeconds < 0 {
		c.Pipeline.MinDurationSeconds = 0
	} else if c.Pipeline.MinDurationSeconds == 0 {
		c.Pipeline.MinDurationSeconds = 120
	}
	if c.Pipeline.DataDir == "" {
		c.Pipeline.DataDir = "data"
	}
	if c.Notes.Dir == "" {
		c.Notes.Dir = "notes"
	}
	if c.Schedule == "" {
		c.Schedule = "0 9 * * *" // Daily at 9 AM
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	return nil
}
