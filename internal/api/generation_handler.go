package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/theaivault/backend/internal/auth"
	"github.com/theaivault/backend/internal/ledger"
	"github.com/theaivault/backend/internal/orchestrator"
	"github.com/theaivault/backend/internal/provider"
)

type GenerationHandler struct {
	orch *orchestrator.Service
	veo  *provider.VeoClient
}

func NewGenerationHandler(orch *orchestrator.Service, veo *provider.VeoClient) *GenerationHandler {
	return &GenerationHandler{orch: orch, veo: veo}
}

type generateVideoRequest struct {
	Prompt      string `json:"prompt"`
	StoryType   string `json:"storyType"`
	AspectRatio string `json:"aspectRatio"`
	Model       string `json:"model"`
	UseFreeMode bool   `json:"useFreeMode"`
}

type generateVideoResponse struct {
	VideoURL         string         `json:"videoUrl"`
	Mode             string         `json:"mode"`
	Provider         string         `json:"provider,omitempty"`
	Message          string         `json:"message,omitempty"`
	CreditsRemaining *int           `json:"creditsRemaining,omitempty"`
	RemainingFree    *int           `json:"remainingFreeVideos,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

func (h *GenerationHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	cmd := orchestrator.VideoCommand{
		ClientKey:   clientKey(r),
		UseFreeMode: req.UseFreeMode,
		Prompt:      req.Prompt,
		StoryType:   req.StoryType,
		AspectRatio: req.AspectRatio,
		Model:       req.Model,
	}
	if user, ok := auth.GetUserFromContext(r.Context()); ok {
		cmd.UserID = user.ID
	}

	result, err := h.orch.GenerateVideo(r.Context(), cmd)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	resp := generateVideoResponse{
		VideoURL: result.URL,
		Mode:     string(result.Mode),
		Provider: result.Provider,
		Message:  result.Message,
		Metadata: result.Metadata,
	}
	if result.CreditsRemaining >= 0 {
		resp.CreditsRemaining = &result.CreditsRemaining
	}
	if cmd.UserID == "" {
		resp.RemainingFree = &result.RemainingFree
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GenerationHandler) VideoOperationStatus(w http.ResponseWriter, r *http.Request) {
	if h.veo == nil {
		writeError(w, http.StatusServiceUnavailable, "premium video tier is not configured")
		return
	}

	operation := mux.Vars(r)["operation"]
	result, err := h.veo.Poll(r.Context(), operation)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	switch result.State {
	case provider.PollDone:
		writeJSON(w, http.StatusOK, map[string]any{"state": "completed", "videoUrl": result.VideoURL})
	case provider.PollRejected:
		writeJSON(w, http.StatusOK, map[string]any{"state": "rejected", "reason": result.Reason})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"state": "processing"})
	}
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Size   string `json:"size"`
	Model  string `json:"model"`
}

func (h *GenerationHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result, err := h.orch.GenerateImage(r.Context(), orchestrator.ImageCommand{
		UserID: user.ID,
		Prompt: req.Prompt,
		Style:  req.Style,
		Size:   req.Size,
		Model:  req.Model,
	})
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imageUrl":         result.URL,
		"mode":             string(result.Mode),
		"provider":         result.Provider,
		"message":          result.Message,
		"creditsRemaining": result.CreditsRemaining,
	})
}

type generateTextRequest struct {
	Prompt   string `json:"prompt"`
	MaxWords int    `json:"maxWords"`
}

func (h *GenerationHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req generateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result, err := h.orch.GenerateText(r.Context(), orchestrator.TextCommand{
		UserID:   user.ID,
		Prompt:   req.Prompt,
		MaxWords: req.MaxWords,
	})
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":             result.Text,
		"mode":             string(result.Mode),
		"provider":         result.Provider,
		"message":          result.Message,
		"creditsRemaining": result.CreditsRemaining,
	})
}

func (h *GenerationHandler) Usage(w http.ResponseWriter, r *http.Request) {
	used, max := h.orch.FreeUsage(clientKey(r))
	remaining := max - used
	if remaining < 0 {
		remaining = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"usedToday":           used,
		"maxDaily":            max,
		"remainingFreeVideos": remaining,
		"isLimitReached":      used >= max,
	})
}

func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrDailyLimitReached):
		writeError(w, http.StatusTooManyRequests, "daily free limit reached, come back tomorrow")
	case errors.Is(err, ledger.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, "no credits remaining")
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
