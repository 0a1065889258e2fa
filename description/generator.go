package description

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"real-estate-pipeline/config"
	"real-estate-pipeline/types"
)

// GenerationError signals that no usable description could be produced:
// the model endpoint failed or the output was empty after cleaning, and
// the template fallback is disabled.
type GenerationError struct {
	RoomType string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("description generation for %q: %v", e.RoomType, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// fallbackAdjectives upgrade plain feature words in the template description
var fallbackAdjectives = map[string]string{
	"spacious":   "expansive",
	"modern":     "contemporary",
	"bright":     "sun-filled",
	"private":    "secluded",
	"peaceful":   "tranquil",
	"landscaped": "meticulously maintained",
}

// Generator produces marketing copy for a room via a locally hosted
// text-generation model (any OpenAI-compatible completion endpoint,
// e.g. llama.cpp server or Ollama)
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new description Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Seed        int       `json:"seed,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a short marketing description for the room.
// Sampling is stochastic unless description.seed is set in config.
func (g *Generator) Generate(ctx context.Context, room types.RoomSpec) (string, error) {
	log.Printf("[description] Generating description for %q...", room.Type)

	prompt := buildPrompt(room)
	raw, err := g.complete(ctx, prompt)
	if err != nil {
		if g.cfg.Description.AllowFallback {
			log.Printf("[description] ⚠️  Model call failed: %v — using template fallback", err)
			return fallbackDescription(room), nil
		}
		return "", &GenerationError{RoomType: room.Type, Err: err}
	}

	cleaned := clean(raw, prompt, g.cfg.Description.MaxWords)
	if len(cleaned) < g.cfg.Description.MinChars {
		if g.cfg.Description.AllowFallback {
			log.Printf("[description] ⚠️  Output too short after cleaning — using template fallback")
			return fallbackDescription(room), nil
		}
		return "", &GenerationError{RoomType: room.Type, Err: fmt.Errorf("empty output after cleaning")}
	}

	log.Printf("[description] ✅ Generated %d chars for %q", len(cleaned), room.Type)
	return cleaned, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := completionRequest{
		Model: g.cfg.Description.Model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		Temperature: g.cfg.Description.Temperature,
		MaxTokens:   256,
		Seed:        g.cfg.Description.Seed,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.Description.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned HTTP %d", resp.StatusCode)
	}

	var result completionResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("parse model response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("model error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func buildPrompt(room types.RoomSpec) string {
	return fmt.Sprintf(
		"Write a luxurious real estate description for a %s with these features: %s. "+
			"The description should be engaging and highlight the best aspects.\n\nDescription:",
		room.Type, strings.Join(room.Features, ", "),
	)
}

// clean strips a prompt echo, collapses whitespace and clips to maxWords
func clean(raw, prompt string, maxWords int) string {
	s := strings.ReplaceAll(raw, prompt, "")
	s = strings.TrimPrefix(strings.TrimSpace(s), "Description:")
	words := strings.Fields(s)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// fallbackDescription builds a template description when the model fails
func fallbackDescription(room types.RoomSpec) string {
	enhanced := make([]string, len(room.Features))
	for i, f := range room.Features {
		if adj, ok := fallbackAdjectives[f]; ok {
			enhanced[i] = adj
		} else {
			enhanced[i] = f
		}
	}
	return fmt.Sprintf(
		"Welcome to this exceptional %s, where %s features create an unforgettable living space. "+
			"This carefully designed area exemplifies luxury living at its finest.",
		room.Type, strings.Join(enhanced, ", "),
	)
}
