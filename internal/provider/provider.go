// Package provider wraps the external generation backends behind a common
// tier contract. Each tier resolves to exactly one of Success, Unavailable,
// or Failed; the orchestrator folds over an ordered tier list and stops at
// the first Success.
package provider

import "context"

type Status int

const (
	StatusSuccess Status = iota
	StatusUnavailable
	StatusFailed
)

type Outcome struct {
	Status   Status
	MediaURL string
	Metadata map[string]any
	Reason   string
}

func Success(mediaURL string, metadata map[string]any) Outcome {
	return Outcome{Status: StatusSuccess, MediaURL: mediaURL, Metadata: metadata}
}

func Unavailable() Outcome {
	return Outcome{Status: StatusUnavailable}
}

func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason}
}

type VideoRequest struct {
	Prompt      string
	StoryType   string
	AspectRatio string
	Model       string
}

type VideoProvider interface {
	Name() string
	Generate(ctx context.Context, req VideoRequest) Outcome
}

type ImageRequest struct {
	Prompt string
	Style  string
	Size   string
	Model  string
}

type ImageProvider interface {
	Name() string
	GenerateImage(ctx context.Context, req ImageRequest) Outcome
}
