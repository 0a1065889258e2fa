package footage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"real-estate-pipeline/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Footage: config.FootageConfig{
			PerPage:         1,
			Orientation:     "landscape",
			SelectionPolicy: "best_quality",
			DownloadRetries: 0,
		},
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New(testConfig(), "test-key")
	c.baseURL = baseURL
	return c
}

func TestFetchDownloadsBestQualityFile(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		json.NewEncoder(w).Encode(searchResponse{Videos: []pexelsVideo{{
			ID:       42,
			URL:      "https://pexels.com/video/42",
			Duration: 12,
			Width:    1920,
			Height:   1080,
			VideoFiles: []pexelsFile{
				{Link: srv.URL + "/clip_sd.mp4", Width: 640, Height: 360},
				{Link: srv.URL + "/clip.mp4", Width: 1920, Height: 1080},
			},
		}}})
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake mp4 bytes"))
	})

	client := newTestClient(t, srv.URL)
	dest := filepath.Join(t.TempDir(), "living_room.mp4")

	asset, err := client.Fetch(context.Background(), "luxury living room", dest)
	require.NoError(t, err)

	assert.Equal(t, "luxury living room", asset.SourceQuery)
	assert.Equal(t, dest, asset.LocalPath)
	assert.Equal(t, 12.0, asset.DurationSec)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fake mp4 bytes", string(data))
}

func TestFetchZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Fetch(context.Background(), "luxury submarine", filepath.Join(t.TempDir(), "x.mp4"))
	require.Error(t, err)

	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
	assert.Equal(t, "luxury submarine", downloadErr.Query)
}

func TestFetchSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Fetch(context.Background(), "luxury garden", filepath.Join(t.TempDir(), "x.mp4"))

	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
}

func TestFetchDownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Videos: []pexelsVideo{{
			ID:         1,
			VideoFiles: []pexelsFile{{Link: srv.URL + "/gone.mp4", Width: 100, Height: 100}},
		}}})
	})
	mux.HandleFunc("/gone.mp4", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	client := newTestClient(t, srv.URL)
	_, err := client.Fetch(context.Background(), "luxury garden", filepath.Join(t.TempDir(), "x.mp4"))

	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
}

func TestSelectFilePolicies(t *testing.T) {
	video := pexelsVideo{VideoFiles: []pexelsFile{
		{Link: "small", Width: 640, Height: 360},
		{Link: "large", Width: 1920, Height: 1080},
		{Link: "medium", Width: 1280, Height: 720},
	}}

	tests := []struct {
		policy   string
		expected string
	}{
		{"best_quality", "large"},
		{"first", "small"},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := testConfig()
			cfg.Footage.SelectionPolicy = tt.policy
			c := New(cfg, "k")
			assert.Equal(t, tt.expected, c.selectFile(video))
		})
	}
}

func TestSelectFileNoFiles(t *testing.T) {
	c := New(testConfig(), "k")
	assert.Equal(t, "", c.selectFile(pexelsVideo{}))
}
