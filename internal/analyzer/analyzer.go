// Package analyzer runs the transcript pipeline: extract video ID, fetch the
// transcript, compute stats, then summarize or fall back to a raw preview.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine/history"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine/sources"
)

// Fetcher retrieves the transcript for a video ID.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID string, langs []string) (string, error)
}

// Summarizer produces the analysis text for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Saver persists a finished run.
type Saver interface {
	Save(ctx context.Context, rec history.Record) (int64, error)
}

// Analyzer holds the pipeline collaborators. The zero value is not usable;
// build one with New.
type Analyzer struct {
	fetcher      Fetcher
	summarizer   Summarizer // nil = no credential, raw preview only
	model        string
	saver        Saver // nil = history off
	langs        []string
	previewChars int
	progress     io.Writer
	now          func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithFetcher replaces the YouTube transcript fetcher.
func WithFetcher(f Fetcher) Option { return func(a *Analyzer) { a.fetcher = f } }

// WithSummarizer enables AI analysis. model is only used for display.
func WithSummarizer(s Summarizer, model string) Option {
	return func(a *Analyzer) {
		a.summarizer = s
		a.model = model
	}
}

// WithHistory records every successful run.
func WithHistory(s Saver) Option { return func(a *Analyzer) { a.saver = s } }

// WithLanguages sets the transcript language preference order.
func WithLanguages(langs []string) Option { return func(a *Analyzer) { a.langs = langs } }

// WithProgress prints the console report to w as the run advances: progress
// lines, the stats block, then the analysis or raw preview block.
func WithProgress(w io.Writer) Option { return func(a *Analyzer) { a.progress = w } }

// New builds an Analyzer with the YouTube fetcher and engine config defaults.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:      YouTubeFetcher{},
		langs:        engine.Cfg.TranscriptLangs,
		previewChars: engine.Cfg.RawPreviewChars,
		progress:     io.Discard,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForLanguages returns a copy of a that fetches transcripts in langs.
// Empty langs returns a unchanged.
func (a *Analyzer) ForLanguages(langs []string) *Analyzer {
	if len(langs) == 0 {
		return a
	}
	c := *a
	c.langs = langs
	return &c
}

// AIEnabled reports whether runs will call the summarizer.
func (a *Analyzer) AIEnabled() bool { return a.summarizer != nil }

// Run executes the pipeline for input (URL or bare video ID).
func (a *Analyzer) Run(ctx context.Context, input string) (*engine.Report, error) {
	engine.IncrRuns()
	fmt.Fprintf(a.progress, "Processing: %s\n", input)

	videoID, err := sources.ExtractVideoID(input)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.progress, "Video ID: %s\n", videoID)

	fmt.Fprintln(a.progress, "Fetching transcript...")
	var transcript string
	err = engine.TrackOperation(ctx, "transcript:"+videoID, 10*time.Second, func(ctx context.Context) error {
		var ferr error
		transcript, ferr = a.fetcher.FetchTranscript(ctx, videoID, a.langs)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	report := &engine.Report{
		VideoID:    videoID,
		URL:        input,
		Transcript: transcript,
		Stats:      engine.ComputeStats(transcript),
		CreatedAt:  a.now().UTC(),
	}

	engine.PrintStats(a.progress, report.Stats)

	if a.summarizer != nil {
		engine.PrintAnalysisHeader(a.progress, a.model)
		if a.model != "" {
			fmt.Fprintf(a.progress, "Analyzing with %s...\n", a.model)
		} else {
			fmt.Fprintln(a.progress, "Analyzing...")
		}
		analysis, err := a.summarizer.Summarize(ctx, transcript)
		if err != nil {
			return nil, err
		}
		report.Analysis = analysis
		report.AIUsed = true
		report.Model = a.model
		fmt.Fprintln(a.progress, analysis)
	} else {
		report.RawPreview = engine.RawPreview(transcript, a.previewChars)
		engine.PrintAnalysis(a.progress, report, a.previewChars)
	}

	a.record(ctx, report)
	return report, nil
}

// record saves the run to history. A history failure never fails the run.
func (a *Analyzer) record(ctx context.Context, r *engine.Report) {
	if a.saver == nil {
		return
	}
	id, err := a.saver.Save(ctx, history.Record{
		VideoID:         r.VideoID,
		URL:             r.URL,
		WordCount:       r.Stats.WordCount,
		CharCount:       r.Stats.CharCount,
		DurationMinutes: r.Stats.EstimatedDurationMinutes,
		Analysis:        r.Analysis,
		Model:           r.Model,
		CreatedAt:       r.CreatedAt,
	})
	if err != nil {
		slog.Warn("history: save failed", slog.String("video_id", r.VideoID), slog.Any("error", err))
		return
	}
	engine.IncrHistorySaved()
	slog.Debug("history: saved", slog.Int64("id", id), slog.String("video_id", r.VideoID))
}
