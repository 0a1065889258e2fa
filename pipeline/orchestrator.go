package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"real-estate-pipeline/config"
	"real-estate-pipeline/description"
	"real-estate-pipeline/footage"
	"real-estate-pipeline/heygen"
	"real-estate-pipeline/types"
)

// FootageFetcher searches and downloads a stock clip for a query
type FootageFetcher interface {
	Fetch(ctx context.Context, query, destPath string) (*types.FootageAsset, error)
}

// DescriptionGenerator produces marketing copy for a room
type DescriptionGenerator interface {
	Generate(ctx context.Context, room types.RoomSpec) (string, error)
}

// VideoGenerator submits footage + description and waits for a terminal state
type VideoGenerator interface {
	SubmitAndWait(ctx context.Context, asset *types.FootageAsset, desc string) (*types.RenderResult, error)
}

// Publisher uploads a completed video somewhere public. Optional stage.
type Publisher interface {
	Publish(ctx context.Context, videoFile string, room types.RoomSpec, desc string) (string, error)
}

// Orchestrator runs every configured room through the three pipeline
// stages in order and collects per-room results
type Orchestrator struct {
	cfg          *config.Config
	runID        string
	footage      FootageFetcher
	descriptions DescriptionGenerator
	videos       VideoGenerator
	publisher    Publisher
}

// New creates a new Orchestrator
func New(cfg *config.Config, runID string, f FootageFetcher, d DescriptionGenerator, v VideoGenerator) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		runID:        runID,
		footage:      f,
		descriptions: d,
		videos:       v,
	}
}

// WithPublisher enables the optional publish stage for completed videos
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publisher = p
	return o
}

// Run processes every room. A stage failure marks that room failed and
// the run continues — one bad room never aborts the others. The result
// slice always matches the input in length and order.
func (o *Orchestrator) Run(ctx context.Context, rooms []types.RoomSpec) []types.GeneratedVideo {
	results := make([]types.GeneratedVideo, len(rooms))

	if o.cfg.Pipeline.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.cfg.Pipeline.Concurrency)
		for i, room := range rooms {
			i, room := i, room
			g.Go(func() error {
				results[i] = o.processRoom(gctx, room)
				return nil
			})
		}
		_ = g.Wait()
		return results
	}

	for i, room := range rooms {
		results[i] = o.processRoom(ctx, room)
	}
	return results
}

func (o *Orchestrator) processRoom(ctx context.Context, room types.RoomSpec) types.GeneratedVideo {
	result := types.GeneratedVideo{Room: room, Stage: types.StagePending}
	log.Printf("[pipeline] ━━━ Processing %q ━━━", room.Type)

	query := strings.TrimSpace(o.cfg.Footage.QueryPrefix + " " + room.Type)
	destPath := filepath.Join(o.cfg.Paths.Downloads,
		fmt.Sprintf("%s_%s.mp4", strings.ReplaceAll(room.Type, " ", "_"), o.runID))

	asset, err := o.footage.Fetch(ctx, query, destPath)
	if err != nil {
		return o.fail(result, "footage", err)
	}
	result.Stage = types.StageFootageFetched

	desc, err := o.descriptions.Generate(ctx, room)
	if err != nil {
		return o.fail(result, "description", err)
	}
	result.Stage = types.StageDescriptionReady
	result.Description = desc

	result.Stage = types.StageSubmitted
	render, err := o.videos.SubmitAndWait(ctx, asset, desc)
	if err != nil {
		return o.fail(result, "video", err)
	}
	if render.Failed {
		log.Printf("[pipeline] ❌ %q: video service reported failure: %s", room.Type, render.FailReason)
		result.Status = types.StatusFailed
		result.Stage = types.StageFailed
		result.Reason = types.ReasonRenderFailed
		result.Error = render.FailReason
		return result
	}

	result.Status = types.StatusSuccess
	result.Stage = types.StageCompleted
	result.VideoURL = render.VideoURL
	result.OutputPath = render.OutputPath
	if result.OutputPath == "" {
		result.OutputPath = render.VideoURL
	}
	log.Printf("[pipeline] ✅ %q complete: %s", room.Type, result.OutputPath)

	// Publish is a soft stage: a failure here never fails the room
	if o.publisher != nil && render.OutputPath != "" {
		url, err := o.publisher.Publish(ctx, render.OutputPath, room, desc)
		if err != nil {
			log.Printf("[pipeline] ⚠️  Publish failed for %q: %v — keeping local result", room.Type, err)
		} else {
			result.YouTubeURL = url
		}
	}
	return result
}

func (o *Orchestrator) fail(result types.GeneratedVideo, stage string, err error) types.GeneratedVideo {
	log.Printf("[pipeline] ❌ %q failed at %s stage: %v", result.Room.Type, stage, err)
	result.Status = types.StatusFailed
	result.Stage = types.StageFailed
	result.Reason = classifyReason(err)
	result.Error = err.Error()
	return result
}

// classifyReason maps a stage error to its failure taxonomy entry
func classifyReason(err error) string {
	var downloadErr *footage.DownloadError
	var generationErr *description.GenerationError
	var submissionErr *heygen.SubmissionError
	var timeoutErr *heygen.TimeoutError

	switch {
	case errors.As(err, &downloadErr):
		return types.ReasonDownloadError
	case errors.As(err, &generationErr):
		return types.ReasonGenerationError
	case errors.As(err, &submissionErr):
		return types.ReasonSubmissionError
	case errors.As(err, &timeoutErr):
		return types.ReasonTimeout
	default:
		return types.ReasonPipelineError
	}
}
