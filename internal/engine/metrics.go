package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Runs                atomic.Int64
	TranscriptRequests  atomic.Int64
	TranscriptErrors    atomic.Int64
	TranscriptsDisabled atomic.Int64
	TranscriptsNotFound atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	HistorySaved        atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"runs",
	"transcript_requests", "transcript_errors",
	"transcripts_disabled", "transcripts_not_found",
	"llm_calls", "llm_errors",
	"history_saved",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"runs":                  metrics.Runs.Load(),
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_errors":     metrics.TranscriptErrors.Load(),
		"transcripts_disabled":  metrics.TranscriptsDisabled.Load(),
		"transcripts_not_found": metrics.TranscriptsNotFound.Load(),
		"llm_calls":             metrics.LLMCalls.Load(),
		"llm_errors":            metrics.LLMErrors.Load(),
		"history_saved":         metrics.HistorySaved.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and analyzer/ sub-packages.
func IncrRuns()               { metrics.Runs.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrHistorySaved()       { metrics.HistorySaved.Add(1) }

// RecordTranscriptError counts a failed transcript fetch by kind.
func RecordTranscriptError(err error) {
	metrics.TranscriptErrors.Add(1)
	switch {
	case errors.Is(err, ErrTranscriptsDisabled):
		metrics.TranscriptsDisabled.Add(1)
	case errors.Is(err, ErrNoTranscriptFound):
		metrics.TranscriptsNotFound.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
