package orchestrator

import (
	"context"
	"fmt"

	"github.com/theaivault/backend/internal/models"
	"github.com/theaivault/backend/internal/provider"
)

type ImageCommand struct {
	UserID string
	Prompt string
	Style  string
	Size   string
	Model  string
}

// GenerateImage runs the billed image path. Authentication is the handler's
// job; UserID is always set here.
func (s *Service) GenerateImage(ctx context.Context, cmd ImageCommand) (*Result, error) {
	balance, err := s.ledger.DebitOne(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	req := provider.ImageRequest{
		Prompt: cmd.Prompt,
		Style:  cmd.Style,
		Size:   cmd.Size,
		Model:  cmd.Model,
	}
	for _, tier := range s.imageTiers {
		outcome := tier.GenerateImage(ctx, req)
		switch outcome.Status {
		case provider.StatusSuccess:
			s.record(ctx, cmd.UserID, models.ContentImage, cmd.Prompt, outcome.MediaURL, outcome.Metadata)
			return &Result{
				URL:              outcome.MediaURL,
				Mode:             ModeProvider,
				Provider:         tier.Name(),
				CreditsRemaining: balance,
				Metadata:         outcome.Metadata,
			}, nil
		case provider.StatusFailed:
			s.log.Warn("image tier failed", "provider", tier.Name(), "reason", outcome.Reason)
		}
	}

	fallbackMeta := map[string]any{"demo": true}
	url := provider.SampleImage(cmd.Style, cmd.Size)
	s.record(ctx, cmd.UserID, models.ContentImage, cmd.Prompt, url, fallbackMeta)
	return &Result{
		URL:              url,
		Mode:             ModeDemoFallback,
		Message:          "Image providers are unavailable right now; here is a sample image instead.",
		CreditsRemaining: balance,
		Metadata:         fallbackMeta,
	}, nil
}

type TextCommand struct {
	UserID   string
	Prompt   string
	MaxWords int
}

// GenerateText runs the billed text path through the single Gemini tier,
// degrading to a canned script when the tier is unavailable or fails.
func (s *Service) GenerateText(ctx context.Context, cmd TextCommand) (*Result, error) {
	balance, err := s.ledger.DebitOne(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	prompt := cmd.Prompt
	if cmd.MaxWords > 0 {
		prompt = fmt.Sprintf("%s\n\nKeep the response under %d words.", prompt, cmd.MaxWords)
	}

	if s.text != nil {
		if text, ok := s.text.GenerateText(ctx, prompt); ok {
			s.record(ctx, cmd.UserID, models.ContentText, cmd.Prompt, "", map[string]any{"provider": "gemini"})
			return &Result{
				Text:             text,
				Mode:             ModeProvider,
				Provider:         "gemini",
				CreditsRemaining: balance,
			}, nil
		}
		s.log.Warn("text tier failed", "provider", "gemini")
	}

	text := demoScript(cmd.Prompt)
	s.record(ctx, cmd.UserID, models.ContentText, cmd.Prompt, "", map[string]any{"demo": true})
	return &Result{
		Text:             text,
		Mode:             ModeDemoFallback,
		Message:          "Text generation is unavailable right now; here is a demo script instead.",
		CreditsRemaining: balance,
	}, nil
}

func demoScript(prompt string) string {
	return fmt.Sprintf(
		"[Demo script]\n\nScene 1: An establishing shot sets the mood for \"%s\".\n"+
			"Scene 2: The subject comes into focus as the story builds.\n"+
			"Scene 3: A closing beat ties the idea together with a call to action.",
		prompt,
	)
}
