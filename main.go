package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"real-estate-pipeline/config"
	"real-estate-pipeline/description"
	"real-estate-pipeline/footage"
	"real-estate-pipeline/heygen"
	"real-estate-pipeline/pipeline"
	"real-estate-pipeline/types"
	"real-estate-pipeline/upload"
)

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Rooms) == 0 {
		log.Fatalf("No rooms configured in config.yaml")
	}

	// Missing credentials abort here, before any network call
	creds, err := config.CredentialsFromEnv(cfg.Upload.Enabled)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.Downloads, cfg.Paths.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		log.Fatalf("Failed to create run dir: %v", err)
	}

	log.Printf("🏠 Real Estate Video Pipeline starting — Run ID: %s", runID)
	log.Printf("📁 Output dir: %s", runDir)
	log.Printf("🚪 Rooms to process: %d", len(cfg.Rooms))

	orch := pipeline.New(cfg, runID,
		footage.New(cfg, creds.PexelsAPIKey),
		description.New(cfg),
		heygen.New(cfg, creds.HeygenAPIKey, runDir),
	)
	if cfg.Upload.Enabled {
		orch = orch.WithPublisher(upload.New(cfg, creds))
	}

	report := &types.RunReport{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	ctx := context.Background()
	report.Results = orch.Run(ctx, cfg.Rooms)
	report.CompletedAt = time.Now().UTC().Format(time.RFC3339)

	saveJSON(filepath.Join(runDir, "run_report.json"), report)
	printReport(report.Results)

	for _, r := range report.Results {
		if r.Status == types.StatusSuccess {
			return
		}
	}
	os.Exit(1)
}

func printReport(results []types.GeneratedVideo) {
	log.Println("━━━ Run Report ━━━")
	for _, r := range results {
		if r.Status == types.StatusSuccess {
			out := r.OutputPath
			if r.YouTubeURL != "" {
				out = out + " → " + r.YouTubeURL
			}
			log.Printf("✅ %-20s %s", r.Room.Type, out)
		} else {
			log.Printf("❌ %-20s %s: %s", r.Room.Type, r.Reason, r.Error)
		}
	}
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
