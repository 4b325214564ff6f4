package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

func TestPikaGenerateSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"video_url": "https://cdn.pika/v.mp4"})
	}))
	defer srv.Close()

	client := NewPikaClient("key123", srv.URL, testLogger())
	outcome := client.Generate(context.Background(), VideoRequest{
		Prompt:      "a fox in snow",
		StoryType:   "cinematic",
		AspectRatio: "9:16",
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("status %v, want success (reason: %s)", outcome.Status, outcome.Reason)
	}
	if outcome.MediaURL != "https://cdn.pika/v.mp4" {
		t.Errorf("got url %q", outcome.MediaURL)
	}
	if gotAuth != "Bearer key123" {
		t.Errorf("got auth header %q", gotAuth)
	}
	if gotPayload["aspect_ratio"] != "vertical" {
		t.Errorf("9:16 should map to vertical, got %v", gotPayload["aspect_ratio"])
	}
}

func TestPikaGenerateWithoutKeyIsUnavailable(t *testing.T) {
	client := NewPikaClient("", "https://api.pikalabs.ai", testLogger())

	outcome := client.Generate(context.Background(), VideoRequest{Prompt: "p"})
	if outcome.Status != StatusUnavailable {
		t.Errorf("status %v, want unavailable", outcome.Status)
	}
}

func TestPikaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewPikaClient("key123", srv.URL, testLogger())
	outcome := client.Generate(context.Background(), VideoRequest{Prompt: "p"})

	if outcome.Status != StatusFailed {
		t.Errorf("status %v, want failed", outcome.Status)
	}
	if outcome.Reason == "" {
		t.Error("failed outcome should carry a reason")
	}
}

func TestPikaGenerateMissingURLIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	}))
	defer srv.Close()

	client := NewPikaClient("key123", srv.URL, testLogger())
	outcome := client.Generate(context.Background(), VideoRequest{Prompt: "p"})

	if outcome.Status != StatusFailed {
		t.Errorf("malformed payload should fail the tier, got status %v", outcome.Status)
	}
}

func TestHaiperGenerateSuccess(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/video/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"video_url": "https://cdn.haiper/v.mp4"})
	}))
	defer srv.Close()

	client := NewHaiperClient("key456", srv.URL, testLogger())
	outcome := client.Generate(context.Background(), VideoRequest{
		Prompt:      "a fox in snow",
		StoryType:   "dance",
		AspectRatio: "16:9",
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("status %v, want success (reason: %s)", outcome.Status, outcome.Reason)
	}
	if gotPayload["ratio"] != "16:9" {
		t.Errorf("got ratio %v, want 16:9", gotPayload["ratio"])
	}
}

func TestVeoTierGates(t *testing.T) {
	var nilClient *VeoClient
	if outcome := nilClient.Generate(context.Background(), VideoRequest{Model: PremiumVideoModel}); outcome.Status != StatusUnavailable {
		t.Errorf("nil client should be unavailable, got %v", outcome.Status)
	}

	client := &VeoClient{model: "veo-3.1-generate-preview", log: testLogger()}
	outcome := client.Generate(context.Background(), VideoRequest{Prompt: "p", Model: "pika-fast"})
	if outcome.Status != StatusUnavailable {
		t.Errorf("non-premium model selection should skip the tier, got %v", outcome.Status)
	}
}

func TestTruncateBody(t *testing.T) {
	short := truncateBody([]byte("short body"))
	if short != "short body" {
		t.Errorf("short bodies should pass through, got %q", short)
	}

	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'a'
	}
	truncated := truncateBody(long)
	if len(truncated) >= 2048 {
		t.Errorf("long bodies should be truncated, got %d bytes", len(truncated))
	}
}
