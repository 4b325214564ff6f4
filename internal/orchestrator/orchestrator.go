// Package orchestrator decides entitlement, runs the provider tier list, and
// resolves each generation request into exactly one terminal result. Per
// request exactly one of {no ledger mutation, counter increment, debit plus
// creation record} happens.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/theaivault/backend/internal/models"
	"github.com/theaivault/backend/internal/provider"
	"github.com/theaivault/backend/internal/ratelimit"
)

var ErrDailyLimitReached = errors.New("orchestrator: daily free limit reached")

// Mode labels a terminal result for API consumers.
type Mode string

const (
	ModeFreeSample   Mode = "free_sample"
	ModeProvider     Mode = "provider"
	ModeDemoFallback Mode = "demo_fallback"
)

// CreditLedger is the slice of the ledger the orchestrator spends against.
type CreditLedger interface {
	DebitOne(ctx context.Context, userID string) (int, error)
	RecordCreation(ctx context.Context, creation *models.Creation) error
}

// TextGenerator is a single-tier text backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, bool)
}

type Service struct {
	ledger     CreditLedger
	limiter    ratelimit.Limiter
	videoTiers []provider.VideoProvider
	imageTiers []provider.ImageProvider
	text       TextGenerator
	log        *slog.Logger
}

func NewService(
	ledger CreditLedger,
	limiter ratelimit.Limiter,
	videoTiers []provider.VideoProvider,
	imageTiers []provider.ImageProvider,
	text TextGenerator,
	log *slog.Logger,
) *Service {
	return &Service{
		ledger:     ledger,
		limiter:    limiter,
		videoTiers: videoTiers,
		imageTiers: imageTiers,
		text:       text,
		log:        log,
	}
}

// Result is the terminal outcome of one generation request. CreditsRemaining
// is -1 on paths that never touched the ledger.
type Result struct {
	URL              string
	Text             string
	Mode             Mode
	Provider         string
	Message          string
	CreditsRemaining int
	RemainingFree    int
	Metadata         map[string]any
}

// VideoCommand carries one video request. An empty UserID marks the caller as
// anonymous; ClientKey then keys the daily counter.
type VideoCommand struct {
	UserID      string
	ClientKey   string
	UseFreeMode bool
	Prompt      string
	StoryType   string
	AspectRatio string
	Model       string
}

func (s *Service) GenerateVideo(ctx context.Context, cmd VideoCommand) (*Result, error) {
	req := provider.VideoRequest{
		Prompt:      cmd.Prompt,
		StoryType:   cmd.StoryType,
		AspectRatio: cmd.AspectRatio,
		Model:       cmd.Model,
	}

	if cmd.UserID == "" {
		// Anonymous callers spend the daily counter instead of credits
		// and never touch the persistent ledger.
		ok, remaining := s.limiter.TryAcquire(cmd.ClientKey)
		if !ok {
			return nil, ErrDailyLimitReached
		}
		if cmd.UseFreeMode {
			return &Result{
				URL:              provider.SampleVideo(cmd.StoryType, cmd.AspectRatio),
				Mode:             ModeFreeSample,
				CreditsRemaining: -1,
				RemainingFree:    remaining,
			}, nil
		}
		if outcome, name, ok := s.runVideoTiers(ctx, req); ok {
			return &Result{
				URL:              outcome.MediaURL,
				Mode:             ModeProvider,
				Provider:         name,
				CreditsRemaining: -1,
				RemainingFree:    remaining,
				Metadata:         outcome.Metadata,
			}, nil
		}
		return &Result{
			URL:              provider.FallbackVideoURL,
			Mode:             ModeDemoFallback,
			Message:          "All generation providers are busy right now; here is a demo video instead.",
			CreditsRemaining: -1,
			RemainingFree:    remaining,
		}, nil
	}

	if cmd.UseFreeMode {
		// Explicit free mode never touches the ledger, even with credits
		// in the account.
		return &Result{
			URL:              provider.SampleVideo(cmd.StoryType, cmd.AspectRatio),
			Mode:             ModeFreeSample,
			CreditsRemaining: -1,
		}, nil
	}

	balance, err := s.ledger.DebitOne(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if outcome, name, ok := s.runVideoTiers(ctx, req); ok {
		s.record(ctx, cmd.UserID, models.ContentVideo, cmd.Prompt, outcome.MediaURL, outcome.Metadata)
		return &Result{
			URL:              outcome.MediaURL,
			Mode:             ModeProvider,
			Provider:         name,
			CreditsRemaining: balance,
			Metadata:         outcome.Metadata,
		}, nil
	}

	// Every tier was unavailable or failed. The attempt is still billed.
	fallbackMeta := map[string]any{"demo": true}
	s.record(ctx, cmd.UserID, models.ContentVideo, cmd.Prompt, provider.FallbackVideoURL, fallbackMeta)
	return &Result{
		URL:              provider.FallbackVideoURL,
		Mode:             ModeDemoFallback,
		Message:          "All generation providers are busy right now; here is a demo video instead.",
		CreditsRemaining: balance,
		Metadata:         fallbackMeta,
	}, nil
}

// runVideoTiers folds over the ordered tier list and stops at the first
// success. A failed tier falls through to the next one.
func (s *Service) runVideoTiers(ctx context.Context, req provider.VideoRequest) (provider.Outcome, string, bool) {
	for _, tier := range s.videoTiers {
		outcome := tier.Generate(ctx, req)
		switch outcome.Status {
		case provider.StatusSuccess:
			return outcome, tier.Name(), true
		case provider.StatusFailed:
			s.log.Warn("video tier failed", "provider", tier.Name(), "reason", outcome.Reason)
		}
	}
	return provider.Outcome{}, "", false
}

// FreeUsage reports the anonymous counter state without consuming.
func (s *Service) FreeUsage(clientKey string) (used, max int) {
	return s.limiter.Usage(clientKey)
}

func (s *Service) record(ctx context.Context, userID string, contentType models.ContentType, prompt, resultURL string, metadata map[string]any) {
	creation := &models.Creation{
		UserID:    userID,
		Type:      contentType,
		Prompt:    prompt,
		ResultURL: resultURL,
		Metadata:  metadata,
	}
	if err := s.ledger.RecordCreation(ctx, creation); err != nil {
		// The debit already happened; a lost history row is not worth
		// failing the whole request over.
		s.log.Error("failed to record creation", "user", userID, "type", contentType, "err", err)
	}
}
