package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealhound/dealhound/internal/models"
)

// ErrUnavailable indicates the hosted classifier could not be reached or
// returned an unusable response.
var ErrUnavailable = errors.New("classify: hosted classifier unavailable")

// ErrInvalidLabel indicates the hosted classifier answered with a label
// outside the fixed enumeration.
var ErrInvalidLabel = errors.New("classify: label outside the category set")

const defaultAITimeout = 15 * time.Second

// AIConfig configures the hosted completion endpoint.
type AIConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// AIStrategy classifies via a hosted text-completion call constrained to the
// fixed category names. Any transport error or out-of-set answer is an error;
// the caller is expected to fall back to the keyword strategy.
type AIStrategy struct {
	cfg    AIConfig
	client *http.Client
}

// NewAIStrategy builds the hosted classifier client. Endpoint and key are
// required; a nil strategy is returned when they are absent so the fallback
// decorator degrades to keywords alone.
func NewAIStrategy(cfg AIConfig) *AIStrategy {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAITimeout
	}
	return &AIStrategy{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify asks the completion endpoint for one of the fixed category names.
func (s *AIStrategy) Classify(ctx context.Context, item models.RawItem) (models.Category, error) {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}

	payload := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: "You classify online deal listings. Answer with exactly one of: " +
					strings.Join(names, ", ") + ". No other text.",
			},
			{
				Role: "user",
				Content: fmt.Sprintf("Title: %s\nDescription: %s\nPrice: %s",
					item.Title, item.Description, item.Price),
			},
		},
		Temperature: 0,
		MaxTokens:   16,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	label := strings.TrimSpace(parsed.Choices[0].Message.Content)
	category := models.Category(label)
	if !category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	return category, nil
}
