package provider

import "math/rand"

// Static sample catalogs for the free and demo-fallback paths, keyed by
// (style, aspect). Unknown keys fall through to the default bucket.

var videoSamples = map[string]map[string][]string{
	"cinematic": {
		"9:16": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_360x640_1mb.mp4",
			"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		},
		"16:9": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_640x360_1mb.mp4",
			"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		},
	},
	"dance": {
		"9:16": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_360x640_2mb.mp4",
		},
		"16:9": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_640x360_2mb.mp4",
		},
	},
	"default": {
		"9:16": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_360x640_1mb.mp4",
		},
		"16:9": {
			"https://sample-videos.com/zip/10/mp4/SampleVideo_640x360_1mb.mp4",
		},
	},
}

// FallbackVideoURL is the single fixed artifact returned when every provider
// tier has failed.
const FallbackVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"

// SampleVideo picks a sample uniformly at random for (style, aspect),
// falling back to the default bucket and then the 9:16 list.
func SampleVideo(style, aspect string) string {
	styleVideos, ok := videoSamples[style]
	if !ok {
		styleVideos = videoSamples["default"]
	}
	aspectVideos, ok := styleVideos[aspect]
	if !ok || len(aspectVideos) == 0 {
		aspectVideos = styleVideos["9:16"]
	}
	return aspectVideos[rand.Intn(len(aspectVideos))]
}

var imageSamples = map[string]map[string][]string{
	"photorealistic": {
		"1024x1024": {
			"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=1024&h=1024&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1518837695005-2083093ee35b?w=1024&h=1024&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=1024&h=1024&fit=crop&crop=center",
		},
		"1024x1792": {
			"https://images.unsplash.com/photo-1518837695005-2083093ee35b?w=1024&h=1792&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=1024&h=1792&fit=crop&crop=center",
		},
		"1792x1024": {
			"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=1792&h=1024&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1469474968028-56623f02e42e?w=1792&h=1024&fit=crop&crop=center",
		},
	},
	"digital-art": {
		"1024x1024": {
			"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=1024&h=1024&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1534796636912-3b95b3ab5986?w=1024&h=1024&fit=crop&crop=center",
		},
		"1024x1792": {
			"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=1024&h=1792&fit=crop&crop=center",
		},
		"1792x1024": {
			"https://images.unsplash.com/photo-1534796636912-3b95b3ab5986?w=1792&h=1024&fit=crop&crop=center",
		},
	},
	"anime": {
		"1024x1024": {
			"https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=1024&h=1024&fit=crop&crop=center",
			"https://images.unsplash.com/photo-1534796636912-3b95b3ab5986?w=1024&h=1024&fit=crop&crop=center",
		},
		"1024x1792": {
			"https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=1024&h=1792&fit=crop&crop=center",
		},
		"1792x1024": {
			"https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=1792&h=1024&fit=crop&crop=center",
		},
	},
}

// SampleImage picks a sample uniformly at random for (style, size), falling
// back to the photorealistic bucket and then the square size.
func SampleImage(style, size string) string {
	styleImages, ok := imageSamples[style]
	if !ok {
		styleImages = imageSamples["photorealistic"]
	}
	sizeImages, ok := styleImages[size]
	if !ok || len(sizeImages) == 0 {
		sizeImages = styleImages["1024x1024"]
	}
	return sizeImages[rand.Intn(len(sizeImages))]
}
