package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// PikaClient is the budget video tier: a single inline-result REST call.
type PikaClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewPikaClient(apiKey, baseURL string, log *slog.Logger) *PikaClient {
	return &PikaClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (c *PikaClient) Name() string { return "pika-labs" }

func (c *PikaClient) Generate(ctx context.Context, req VideoRequest) Outcome {
	if c.apiKey == "" {
		return Unavailable()
	}

	orientation := "horizontal"
	if req.AspectRatio == "9:16" {
		orientation = "vertical"
	}
	payload := map[string]any{
		"prompt":       fmt.Sprintf("%s style: %s", req.StoryType, req.Prompt),
		"aspect_ratio": orientation,
		"duration":     8,
	}

	body, err := c.post(ctx, "/v1/generate", payload)
	if err != nil {
		c.log.Error("pika generation failed", "err", err)
		return Failed(err.Error())
	}

	var parsed struct {
		VideoURL string `json:"video_url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Failed(fmt.Sprintf("decode pika response: %v", err))
	}
	if parsed.VideoURL == "" {
		return Failed("pika response missing video_url")
	}

	return Success(parsed.VideoURL, map[string]any{
		"provider": c.Name(),
		"quality":  "standard",
	})
}

func (c *PikaClient) post(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post pika: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pika error: status=%d body=%s", resp.StatusCode, truncateBody(rawBody))
	}
	return rawBody, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
