package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"real-estate-pipeline/config"
	"real-estate-pipeline/types"
)

// Publisher uploads completed walkthrough videos to YouTube via Data API v3
type Publisher struct {
	cfg   *config.Config
	creds *config.Credentials
}

// New creates a new Publisher
func New(cfg *config.Config, creds *config.Credentials) *Publisher {
	return &Publisher{cfg: cfg, creds: creds}
}

// Publish uploads the video with metadata derived from the room and its
// generated description, returning the watch URL
func (p *Publisher) Publish(ctx context.Context, videoFile string, room types.RoomSpec, desc string) (string, error) {
	log.Printf("[upload] Authenticating with YouTube API...")

	client, err := p.oauthClient(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	title := fmt.Sprintf("Property Walkthrough: %s", room.Type)
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                title,
			Description:          desc,
			Tags:                 append([]string{"real estate", "walkthrough", room.Type}, room.Features...),
			CategoryId:           p.cfg.Upload.CategoryID,
			DefaultLanguage:      p.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: p.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: p.cfg.Upload.Visibility,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	log.Printf("[upload] Uploading %q...", title)
	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	log.Printf("[upload] ✅ Published: %s", videoURL)
	return videoURL, nil
}

func (p *Publisher) oauthClient(ctx context.Context) (*http.Client, error) {
	conf := &oauth2.Config{
		ClientID:     p.creds.YouTubeClientID,
		ClientSecret: p.creds.YouTubeClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		RefreshToken: p.creds.YouTubeRefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return conf.Client(ctx, token), nil
}
