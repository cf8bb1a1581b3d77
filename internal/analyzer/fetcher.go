package analyzer

import (
	"context"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine/sources"
)

// YouTubeFetcher fetches transcripts from YouTube through the engine cache.
type YouTubeFetcher struct{}

// FetchTranscript implements Fetcher.
func (YouTubeFetcher) FetchTranscript(ctx context.Context, videoID string, langs []string) (string, error) {
	if text, ok := engine.CacheGetTranscript(ctx, videoID, langs); ok {
		return text, nil
	}
	text, err := sources.FetchYouTubeTranscript(ctx, videoID, langs)
	if err != nil {
		return "", err
	}
	engine.CacheSetTranscript(ctx, videoID, langs, text)
	return text, nil
}
