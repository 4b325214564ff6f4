package provider

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// GeminiTextClient generates text completions through the Gemini API.
type GeminiTextClient struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// NewGeminiTextClient returns nil (tier unavailable) when no usable key is
// configured.
func NewGeminiTextClient(ctx context.Context, apiKey, model string, log *slog.Logger) (*GeminiTextClient, error) {
	if apiKey == "" || apiKey == "demo_key" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiTextClient{client: client, model: model, log: log}, nil
}

func (c *GeminiTextClient) Name() string { return "gemini" }

// GenerateText returns the generated text, or ok=false when the tier is
// unavailable or the call failed.
func (c *GeminiTextClient) GenerateText(ctx context.Context, prompt string) (string, bool) {
	if c == nil {
		return "", false
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		c.log.Error("gemini text generation failed", "err", err)
		return "", false
	}
	text := result.Text()
	if text == "" {
		return "", false
	}
	return text, true
}
