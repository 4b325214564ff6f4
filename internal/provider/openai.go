package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const openAIImagesURL = "https://api.openai.com/v1/images/generations"

// OpenAIImageClient generates images through the DALL-E API.
type OpenAIImageClient struct {
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

func NewOpenAIImageClient(apiKey string, log *slog.Logger) *OpenAIImageClient {
	return &OpenAIImageClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

func (c *OpenAIImageClient) Name() string { return "openai-dalle" }

func (c *OpenAIImageClient) GenerateImage(ctx context.Context, req ImageRequest) Outcome {
	if c.apiKey == "" || c.apiKey == "demo_key" {
		return Unavailable()
	}

	model := req.Model
	if model == "" {
		model = "dall-e-3"
	}
	size := req.Size
	if size == "" {
		size = "1024x1024"
	}
	payload := map[string]any{
		"model":  model,
		"prompt": fmt.Sprintf("%s in %s style", req.Prompt, req.Style),
		"n":      1,
		"size":   size,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(fmt.Sprintf("marshal payload: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIImagesURL, bytes.NewReader(body))
	if err != nil {
		return Failed(fmt.Sprintf("new request: %v", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("openai image generation failed", "err", err)
		return Failed(fmt.Sprintf("post openai: %v", err))
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(fmt.Sprintf("read response body: %v", err))
	}
	if resp.StatusCode >= 300 {
		c.log.Error("openai returned error", "status", resp.StatusCode, "body", truncateBody(rawBody))
		return Failed(fmt.Sprintf("openai error: status=%d", resp.StatusCode))
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return Failed(fmt.Sprintf("decode openai response: %v", err))
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return Failed("openai response missing image url")
	}

	return Success(parsed.Data[0].URL, map[string]any{
		"provider": c.Name(),
		"model":    model,
	})
}
