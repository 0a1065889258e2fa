package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"real-estate-pipeline/types"
)

type Config struct {
	Rooms       []types.RoomSpec  `yaml:"rooms"`
	Footage     FootageConfig     `yaml:"footage"`
	Description DescriptionConfig `yaml:"description"`
	Video       VideoConfig       `yaml:"video"`
	Upload      UploadConfig      `yaml:"upload"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Paths       PathsConfig       `yaml:"paths"`
}

type FootageConfig struct {
	QueryPrefix     string `yaml:"query_prefix"`
	PerPage         int    `yaml:"per_page"`
	Orientation     string `yaml:"orientation"`
	SelectionPolicy string `yaml:"selection_policy"` // best_quality | first
	DownloadRetries int    `yaml:"download_retries"`
}

type DescriptionConfig struct {
	Endpoint      string  `yaml:"endpoint"`
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	Seed          int     `yaml:"seed"`
	MaxWords      int     `yaml:"max_words"`
	MinChars      int     `yaml:"min_chars"`
	AllowFallback bool    `yaml:"allow_fallback"`
}

type VideoConfig struct {
	PollIntervalSec int  `yaml:"poll_interval_sec"`
	TimeoutSec      int  `yaml:"timeout_sec"`
	Width           int  `yaml:"width"`
	Height          int  `yaml:"height"`
	DownloadResult  bool `yaml:"download_result"`
}

type UploadConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Visibility      string `yaml:"visibility"`
	CategoryID      string `yaml:"category_id"`
	DefaultLanguage string `yaml:"default_language"`
}

type PipelineConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type PathsConfig struct {
	Downloads string `yaml:"downloads"`
	Output    string `yaml:"output"`
}

// Load reads config.yaml and returns a Config struct with defaults applied
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Footage.QueryPrefix == "" {
		c.Footage.QueryPrefix = "luxury"
	}
	if c.Footage.PerPage == 0 {
		c.Footage.PerPage = 1
	}
	if c.Footage.Orientation == "" {
		c.Footage.Orientation = "landscape"
	}
	if c.Footage.SelectionPolicy == "" {
		c.Footage.SelectionPolicy = "best_quality"
	}
	if c.Footage.DownloadRetries == 0 {
		c.Footage.DownloadRetries = 2
	}
	if c.Description.Endpoint == "" {
		c.Description.Endpoint = "http://127.0.0.1:11434/v1/chat/completions"
	}
	if c.Description.Temperature == 0 {
		c.Description.Temperature = 0.7
	}
	if c.Description.MaxWords == 0 {
		c.Description.MaxWords = 80
	}
	if c.Description.MinChars == 0 {
		c.Description.MinChars = 20
	}
	if c.Video.PollIntervalSec == 0 {
		c.Video.PollIntervalSec = 5
	}
	if c.Video.TimeoutSec == 0 {
		c.Video.TimeoutSec = 300
	}
	if c.Video.Width == 0 {
		c.Video.Width = 1920
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1080
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "unlisted"
	}
	if c.Pipeline.Concurrency == 0 {
		c.Pipeline.Concurrency = 1
	}
	if c.Paths.Downloads == "" {
		c.Paths.Downloads = "downloads"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
}

// Credentials holds the API keys read from the environment.
// Each component receives only the key it needs.
type Credentials struct {
	PexelsAPIKey        string
	HeygenAPIKey        string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeRefreshToken string
}

// MissingKeyError reports a required environment variable that is not set.
// It is fatal at startup — no room is processed without credentials.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s not found in environment variables", e.Key)
}

// CredentialsFromEnv reads all required API keys from the environment.
// YouTube credentials are only required when upload is enabled.
func CredentialsFromEnv(uploadEnabled bool) (*Credentials, error) {
	creds := &Credentials{
		PexelsAPIKey:        os.Getenv("PEXELS_API_KEY"),
		HeygenAPIKey:        os.Getenv("HEYGEN_API_KEY"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeRefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}

	if creds.PexelsAPIKey == "" {
		return nil, &MissingKeyError{Key: "PEXELS_API_KEY"}
	}
	if creds.HeygenAPIKey == "" {
		return nil, &MissingKeyError{Key: "HEYGEN_API_KEY"}
	}
	if uploadEnabled {
		for key, val := range map[string]string{
			"YOUTUBE_CLIENT_ID":     creds.YouTubeClientID,
			"YOUTUBE_CLIENT_SECRET": creds.YouTubeClientSecret,
			"YOUTUBE_REFRESH_TOKEN": creds.YouTubeRefreshToken,
		} {
			if val == "" {
				return nil, &MissingKeyError{Key: key}
			}
		}
	}
	return creds, nil
}
