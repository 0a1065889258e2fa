package types

// RoomSpec is one room to process — the unit of work for the pipeline.
// Supplied by config, immutable for the run.
type RoomSpec struct {
	Type     string   `yaml:"type" json:"type"`
	Features []string `yaml:"features" json:"features"`
}

// Stage tracks how far a room made it through the pipeline
type Stage string

const (
	StagePending          Stage = "pending"
	StageFootageFetched   Stage = "footage_fetched"
	StageDescriptionReady Stage = "description_ready"
	StageSubmitted        Stage = "submitted"
	StageCompleted        Stage = "completed"
	StageFailed           Stage = "failed"
)

// Room result statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Failure reasons recorded on a failed room result
const (
	ReasonDownloadError   = "download_error"
	ReasonGenerationError = "generation_error"
	ReasonSubmissionError = "submission_error"
	ReasonTimeout         = "timeout_error"
	ReasonRenderFailed    = "render_failed"
	ReasonPipelineError   = "pipeline_error"
)

// FootageAsset is a locally stored stock clip ready to be used
// as the background of a generated video
type FootageAsset struct {
	SourceQuery string  `json:"source_query"`
	SourceURL   string  `json:"source_url"`
	LocalPath   string  `json:"local_path"`
	DurationSec float64 `json:"duration_sec"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// RenderResult is the terminal outcome of one video-synthesis job.
// Failed=true means the vendor reported a terminal failure — the job
// itself ran, so this is a result, not an error.
type RenderResult struct {
	VideoID    string `json:"video_id"`
	VideoURL   string `json:"video_url,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Failed     bool   `json:"failed"`
	FailReason string `json:"fail_reason,omitempty"`
}

// GeneratedVideo is the terminal artifact of one room's pipeline run
type GeneratedVideo struct {
	Room        RoomSpec `json:"room"`
	Status      string   `json:"status"`
	Stage       Stage    `json:"stage"`
	Description string   `json:"description,omitempty"`
	OutputPath  string   `json:"output_path,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
	YouTubeURL  string   `json:"youtube_url,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// RunReport is the full record of one pipeline run
type RunReport struct {
	RunID       string           `json:"run_id"`
	StartedAt   string           `json:"started_at"`
	CompletedAt string           `json:"completed_at"`
	Results     []GeneratedVideo `json:"results"`
}
