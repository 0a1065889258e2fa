package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"real-estate-pipeline/config"
	"real-estate-pipeline/types"
)

const defaultBaseURL = "https://api.heygen.com/v2"

// SubmissionError signals that the video job was rejected before it ever
// ran: bad credentials, malformed payload, upload failure or a response
// without a job ID.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("video submission (%s): %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// TimeoutError signals that polling exceeded the configured bound without
// the job reaching a terminal state
type TimeoutError struct {
	VideoID string
	Waited  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for video %s", e.Waited, e.VideoID)
}

// Client submits avatar-narration video jobs to HeyGen and polls them
// to a terminal state
type Client struct {
	cfg          *config.Config
	apiKey       string
	baseURL      string
	outputDir    string
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

// New creates a new HeyGen Client. Completed videos are downloaded into
// outputDir when video.download_result is enabled.
func New(cfg *config.Config, apiKey, outputDir string) *Client {
	return &Client{
		cfg:          cfg,
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		outputDir:    outputDir,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: time.Duration(cfg.Video.PollIntervalSec) * time.Second,
		timeout:      time.Duration(cfg.Video.TimeoutSec) * time.Second,
	}
}

// HeyGen wire structs
type avatarsResponse struct {
	Data struct {
		Avatars []struct {
			AvatarID string `json:"avatar_id"`
		} `json:"avatars"`
	} `json:"data"`
}

type voicesResponse struct {
	Data struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
		} `json:"voices"`
	} `json:"data"`
}

type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

type generateRequest struct {
	VideoInputs []videoInput `json:"video_inputs"`
	Dimension   dimension    `json:"dimension"`
}

type videoInput struct {
	Character character  `json:"character"`
	Voice     voiceInput `json:"voice"`
	Background background `json:"background"`
}

type character struct {
	Type        string `json:"type"`
	AvatarID    string `json:"avatar_id"`
	AvatarStyle string `json:"avatar_style"`
}

type voiceInput struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
}

type background struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generateResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type statusResponse struct {
	Data struct {
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"data"`
}

// SubmitAndWait uploads the footage as background, submits a generation
// job narrating the description, then polls until the job reaches a
// terminal state. A vendor-reported terminal failure is returned as a
// failed RenderResult, not an error, so the caller can continue.
func (c *Client) SubmitAndWait(ctx context.Context, asset *types.FootageAsset, desc string) (*types.RenderResult, error) {
	avatarID, err := c.firstAvatar(ctx)
	if err != nil {
		return nil, &SubmissionError{Op: "list avatars", Err: err}
	}
	voiceID, err := c.firstVoice(ctx)
	if err != nil {
		return nil, &SubmissionError{Op: "list voices", Err: err}
	}
	log.Printf("[heygen] Using avatar %s and voice %s", avatarID, voiceID)

	backgroundURL, err := c.uploadFootage(ctx, asset.LocalPath)
	if err != nil {
		return nil, &SubmissionError{Op: "upload footage", Err: err}
	}

	videoID, err := c.generate(ctx, avatarID, voiceID, desc, backgroundURL)
	if err != nil {
		return nil, &SubmissionError{Op: "generate", Err: err}
	}
	log.Printf("[heygen] Video job submitted: %s", videoID)

	return c.waitForCompletion(ctx, videoID)
}

func (c *Client) firstAvatar(ctx context.Context) (string, error) {
	var result avatarsResponse
	if err := c.getJSON(ctx, c.baseURL+"/avatars", &result); err != nil {
		return "", err
	}
	if len(result.Data.Avatars) == 0 {
		return "", fmt.Errorf("no avatars available")
	}
	return result.Data.Avatars[0].AvatarID, nil
}

func (c *Client) firstVoice(ctx context.Context) (string, error) {
	var result voicesResponse
	if err := c.getJSON(ctx, c.baseURL+"/voices", &result); err != nil {
		return "", err
	}
	if len(result.Data.Voices) == 0 {
		return "", fmt.Errorf("no voices available")
	}
	return result.Data.Voices[0].VoiceID, nil
}

// uploadFootage sends the local clip as a multipart upload and returns
// the hosted URL HeyGen assigns to it
func (c *Client) uploadFootage(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open footage: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read footage: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/upload/video", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned HTTP %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if result.Data.URL == "" {
		return "", fmt.Errorf("no URL in upload response")
	}
	return result.Data.URL, nil
}

func (c *Client) generate(ctx context.Context, avatarID, voiceID, text, backgroundURL string) (string, error) {
	reqBody := generateRequest{
		VideoInputs: []videoInput{
			{
				Character:  character{Type: "avatar", AvatarID: avatarID, AvatarStyle: "normal"},
				Voice:      voiceInput{Type: "text", InputText: text, VoiceID: voiceID, Speed: 1.0},
				Background: background{Type: "video", URL: backgroundURL},
			},
		},
		Dimension: dimension{Width: c.cfg.Video.Width, Height: c.cfg.Video.Height},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/video/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generate returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse generate response: %w", err)
	}
	if result.Data.VideoID == "" {
		return "", fmt.Errorf("no video ID in response")
	}
	return result.Data.VideoID, nil
}

// waitForCompletion polls the job status until a terminal state or the
// configured deadline
func (c *Client) waitForCompletion(ctx context.Context, videoID string) (*types.RenderResult, error) {
	deadline := time.Now().Add(c.timeout)

	for time.Now().Before(deadline) {
		var result statusResponse
		if err := c.getJSON(ctx, c.baseURL+"/video/status?video_id="+videoID, &result); err != nil {
			return nil, &SubmissionError{Op: "poll status", Err: err}
		}

		switch result.Data.Status {
		case "completed":
			log.Printf("[heygen] ✅ Video %s completed", videoID)
			render := &types.RenderResult{VideoID: videoID, VideoURL: result.Data.VideoURL}
			if c.cfg.Video.DownloadResult && result.Data.VideoURL != "" {
				outFile := filepath.Join(c.outputDir, videoID+".mp4")
				if err := c.downloadResult(ctx, result.Data.VideoURL, outFile); err != nil {
					log.Printf("[heygen] ⚠️  Result download failed: %v — keeping remote URL only", err)
				} else {
					render.OutputPath = outFile
				}
			}
			return render, nil

		case "failed":
			reason := "unknown error"
			if result.Data.Error != nil {
				reason = result.Data.Error.Message
			}
			log.Printf("[heygen] ❌ Video %s failed: %s", videoID, reason)
			return &types.RenderResult{VideoID: videoID, Failed: true, FailReason: reason}, nil
		}

		log.Printf("[heygen] Video %s status: %s — waiting...", videoID, result.Data.Status)
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &TimeoutError{VideoID: videoID, Waited: c.timeout}
}

func (c *Client) downloadResult(ctx context.Context, videoURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching rendered video", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
