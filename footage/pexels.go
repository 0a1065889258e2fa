package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"real-estate-pipeline/config"
	"real-estate-pipeline/types"
)

const defaultBaseURL = "https://api.pexels.com/videos"

// DownloadError signals that stock footage could not be obtained:
// the search failed, returned zero results, or the download/write failed.
type DownloadError struct {
	Query string
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("footage download for %q: %v", e.Query, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Client searches and downloads stock footage clips from Pexels
type Client struct {
	cfg        *config.Config
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a new footage Client
func New(cfg *config.Config, apiKey string) *Client {
	return &Client{
		cfg:        cfg,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Pexels wire structs
type searchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int          `json:"id"`
	URL        string       `json:"url"`
	Duration   float64      `json:"duration"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	VideoFiles []pexelsFile `json:"video_files"`
}

type pexelsFile struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Fetch searches Pexels for the query, selects a clip per the configured
// selection policy and downloads it to destPath
func (c *Client) Fetch(ctx context.Context, query, destPath string) (*types.FootageAsset, error) {
	log.Printf("[footage] Searching Pexels for %q...", query)

	videos, err := c.search(ctx, query)
	if err != nil {
		return nil, &DownloadError{Query: query, Err: err}
	}
	if len(videos) == 0 {
		return nil, &DownloadError{Query: query, Err: fmt.Errorf("no videos found")}
	}

	video := videos[0]
	link := c.selectFile(video)
	if link == "" {
		return nil, &DownloadError{Query: query, Err: fmt.Errorf("video %d has no downloadable files", video.ID)}
	}

	if err := c.download(ctx, link, destPath); err != nil {
		return nil, &DownloadError{Query: query, Err: err}
	}

	log.Printf("[footage] ✅ Downloaded %q clip to %s (%.0fs)", query, destPath, video.Duration)
	return &types.FootageAsset{
		SourceQuery: query,
		SourceURL:   video.URL,
		LocalPath:   destPath,
		DurationSec: video.Duration,
		Width:       video.Width,
		Height:      video.Height,
	}, nil
}

func (c *Client) search(ctx context.Context, query string) ([]pexelsVideo, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", c.cfg.Footage.PerPage))
	params.Set("orientation", c.cfg.Footage.Orientation)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return result.Videos, nil
}

// selectFile picks a download link per the configured policy:
// "best_quality" takes the largest file by pixel area, "first" takes
// the first file as listed
func (c *Client) selectFile(video pexelsVideo) string {
	files := video.VideoFiles
	if len(files) == 0 {
		return ""
	}
	if c.cfg.Footage.SelectionPolicy == "first" {
		return files[0].Link
	}
	sorted := make([]pexelsFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Width*sorted[i].Height > sorted[j].Width*sorted[j].Height
	})
	return sorted[0].Link
}

// download streams the clip to destPath, retrying with linear backoff
func (c *Client) download(ctx context.Context, link, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	var err error
	for attempt := 1; attempt <= c.cfg.Footage.DownloadRetries+1; attempt++ {
		err = c.downloadOnce(ctx, link, destPath)
		if err == nil {
			return nil
		}
		if attempt <= c.cfg.Footage.DownloadRetries {
			log.Printf("[footage] Download attempt %d failed: %v — retrying...", attempt, err)
			select {
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

func (c *Client) downloadOnce(ctx context.Context, link, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching clip", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("write clip: %w", err)
	}
	return nil
}
