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

// HaiperClient is the mid-tier video backend, tried after Pika.
type HaiperClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewHaiperClient(apiKey, baseURL string, log *slog.Logger) *HaiperClient {
	return &HaiperClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (c *HaiperClient) Name() string { return "haiper-ai" }

func (c *HaiperClient) Generate(ctx context.Context, req VideoRequest) Outcome {
	if c.apiKey == "" {
		return Unavailable()
	}

	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "9:16"
	}
	payload := map[string]any{
		"text":     fmt.Sprintf("Create %s video: %s", req.StoryType, req.Prompt),
		"ratio":    aspect,
		"duration": 8,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(fmt.Sprintf("marshal payload: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/video/generate", bytes.NewReader(body))
	if err != nil {
		return Failed(fmt.Sprintf("new request: %v", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("haiper generation failed", "err", err)
		return Failed(fmt.Sprintf("post haiper: %v", err))
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(fmt.Sprintf("read response body: %v", err))
	}
	if resp.StatusCode >= 300 {
		c.log.Error("haiper returned error", "status", resp.StatusCode, "body", truncateBody(rawBody))
		return Failed(fmt.Sprintf("haiper error: status=%d", resp.StatusCode))
	}

	var parsed struct {
		VideoURL string `json:"video_url"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return Failed(fmt.Sprintf("decode haiper response: %v", err))
	}
	if parsed.VideoURL == "" {
		return Failed("haiper response missing video_url")
	}

	return Success(parsed.VideoURL, map[string]any{
		"provider": c.Name(),
		"quality":  "good",
	})
}
