package provider

import (
	"strings"
	"testing"
)

func TestSampleVideoKnownBucket(t *testing.T) {
	url := SampleVideo("cinematic", "16:9")
	found := false
	for _, candidate := range videoSamples["cinematic"]["16:9"] {
		if url == candidate {
			found = true
		}
	}
	if !found {
		t.Errorf("got %q, not in the cinematic 16:9 bucket", url)
	}
}

func TestSampleVideoFallsBackOnUnknownKeys(t *testing.T) {
	if url := SampleVideo("claymation", "9:16"); url == "" {
		t.Error("unknown style should fall back to the default bucket")
	}
	if url := SampleVideo("cinematic", "4:3"); url == "" {
		t.Error("unknown aspect should fall back to 9:16")
	}
	if url := SampleVideo("", ""); url == "" {
		t.Error("empty keys should still resolve to a sample")
	}
}

func TestSampleImageFallsBackOnUnknownKeys(t *testing.T) {
	if url := SampleImage("cubism", "1024x1024"); url == "" {
		t.Error("unknown style should fall back to photorealistic")
	}
	url := SampleImage("anime", "800x600")
	if !strings.Contains(url, "unsplash.com") {
		t.Errorf("unknown size should fall back to the square bucket, got %q", url)
	}
}
