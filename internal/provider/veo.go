package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// PremiumVideoModel is the model identifier callers send to request the
// flagship tier. Other model values skip the Veo tier entirely.
const PremiumVideoModel = "veo-3-ultra"

const (
	veoMaxPollAttempts = 20
	veoPollInterval    = 2 * time.Second
	veoPollIntervalMax = 16 * time.Second
)

// VeoClient drives video generation through the Gemini API's long-running
// operation protocol: Submit returns an operation name, Poll resolves it.
type VeoClient struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// NewVeoClient returns nil (tier unavailable) when no usable key is
// configured. A placeholder key counts as unconfigured.
func NewVeoClient(ctx context.Context, apiKey, model string, log *slog.Logger) (*VeoClient, error) {
	if apiKey == "" || apiKey == "demo_key" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create veo client: %w", err)
	}
	return &VeoClient{client: client, model: model, log: log}, nil
}

func (c *VeoClient) Name() string { return "veo-3.1" }

// Submit starts a generation and returns the operation name for polling.
func (c *VeoClient) Submit(ctx context.Context, req VideoRequest) (string, error) {
	prompt := fmt.Sprintf("Generate a %s style video: %s", req.StoryType, req.Prompt)
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "9:16"
	}

	op, err := c.client.Models.GenerateVideos(ctx, c.model, prompt, nil, &genai.GenerateVideosConfig{
		AspectRatio: aspect,
	})
	if err != nil {
		return "", fmt.Errorf("submit veo generation: %w", err)
	}
	return op.Name, nil
}

type PollState int

const (
	PollPending PollState = iota
	PollDone
	PollRejected
)

type PollResult struct {
	State    PollState
	VideoURL string
	Reason   string
}

// Poll checks one long-running operation. The caller owns the retry loop and
// its bound.
func (c *VeoClient) Poll(ctx context.Context, operationName string) (PollResult, error) {
	op := &genai.GenerateVideosOperation{Name: operationName}
	op, err := c.client.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return PollResult{}, fmt.Errorf("poll veo operation: %w", err)
	}

	if !op.Done {
		return PollResult{State: PollPending}, nil
	}

	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 {
		video := op.Response.GeneratedVideos[0].Video
		if video != nil && video.URI != "" {
			return PollResult{State: PollDone, VideoURL: video.URI}, nil
		}
	}
	return PollResult{State: PollRejected, Reason: "operation completed without a video"}, nil
}

// Generate runs the synchronous tier path: submit, then poll with capped
// backoff until done or the attempt budget runs out. Any failure is a tier
// failure, never a hard error.
func (c *VeoClient) Generate(ctx context.Context, req VideoRequest) Outcome {
	if c == nil {
		return Unavailable()
	}
	if req.Model != PremiumVideoModel {
		return Unavailable()
	}

	operationName, err := c.Submit(ctx, req)
	if err != nil {
		c.log.Error("veo submit failed", "err", err)
		return Failed(err.Error())
	}

	interval := veoPollInterval
	for attempt := 0; attempt < veoMaxPollAttempts; attempt++ {
		result, err := c.Poll(ctx, operationName)
		if err != nil {
			c.log.Error("veo poll failed", "operation", operationName, "err", err)
			return Failed(err.Error())
		}

		switch result.State {
		case PollDone:
			return Success(result.VideoURL, map[string]any{
				"provider": c.Name(),
				"quality":  "premium",
			})
		case PollRejected:
			c.log.Warn("veo operation rejected", "operation", operationName, "reason", result.Reason)
			return Failed(result.Reason)
		}

		select {
		case <-ctx.Done():
			return Failed(ctx.Err().Error())
		case <-time.After(interval):
		}
		if interval *= 2; interval > veoPollIntervalMax {
			interval = veoPollIntervalMax
		}
	}
	return Failed(fmt.Sprintf("operation still pending after %d attempts", veoMaxPollAttempts))
}
