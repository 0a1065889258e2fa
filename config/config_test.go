package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
rooms:
  - type: living room
    features: [spacious, modern, bright]
  - type: garden
    features: [private, landscaped]
footage:
  query_prefix: cozy
video:
  timeout_sec: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Rooms, 2)
	assert.Equal(t, "living room", cfg.Rooms[0].Type)
	assert.Equal(t, []string{"spacious", "modern", "bright"}, cfg.Rooms[0].Features)
	assert.Equal(t, "cozy", cfg.Footage.QueryPrefix)
	assert.Equal(t, 60, cfg.Video.TimeoutSec)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "rooms:\n  - type: kitchen\n    features: [bright]\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "luxury", cfg.Footage.QueryPrefix)
	assert.Equal(t, 1, cfg.Footage.PerPage)
	assert.Equal(t, "landscape", cfg.Footage.Orientation)
	assert.Equal(t, "best_quality", cfg.Footage.SelectionPolicy)
	assert.Equal(t, 5, cfg.Video.PollIntervalSec)
	assert.Equal(t, 300, cfg.Video.TimeoutSec)
	assert.Equal(t, 1920, cfg.Video.Width)
	assert.Equal(t, 1080, cfg.Video.Height)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, "downloads", cfg.Paths.Downloads)
	assert.Equal(t, "output", cfg.Paths.Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "pexels-key")
	t.Setenv("HEYGEN_API_KEY", "heygen-key")

	creds, err := CredentialsFromEnv(false)
	require.NoError(t, err)
	assert.Equal(t, "pexels-key", creds.PexelsAPIKey)
	assert.Equal(t, "heygen-key", creds.HeygenAPIKey)
}

func TestCredentialsFromEnvMissing(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "pexels-key")
	t.Setenv("HEYGEN_API_KEY", "")

	_, err := CredentialsFromEnv(false)
	require.Error(t, err)

	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "HEYGEN_API_KEY", missing.Key)
}

func TestCredentialsFromEnvUploadEnabled(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "pexels-key")
	t.Setenv("HEYGEN_API_KEY", "heygen-key")
	t.Setenv("YOUTUBE_CLIENT_ID", "")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")

	_, err := CredentialsFromEnv(true)
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))

	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "token")

	creds, err := CredentialsFromEnv(true)
	require.NoError(t, err)
	assert.Equal(t, "token", creds.YouTubeRefreshToken)
}
