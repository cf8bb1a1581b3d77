package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// CompleteFunc sends a single prompt and returns the model's text.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// Summarizer turns a transcript into the four-section analysis.
// Safe for concurrent use.
type Summarizer struct {
	complete CompleteFunc
	model    string
	maxChars int
	timeout  time.Duration
	limiter  *rate.Limiter // nil = unlimited
}

// NewSummarizer builds a Summarizer backed by the configured OpenAI-compatible
// endpoint. Returns ErrNoCredential when no API key is set.
func NewSummarizer() (*Summarizer, error) {
	if cfg.LLMAPIKey == "" {
		return nil, ErrNoCredential
	}
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := llm.NewClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel,
		llm.WithFallbackKeys(cfg.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	complete := func(ctx context.Context, prompt string) (string, error) {
		return client.Complete(ctx, "", prompt)
	}
	return NewSummarizerFunc(cfg.LLMModel, complete), nil
}

// NewSummarizerFunc wraps an arbitrary completion function, using the engine
// config for truncation, timeout and rate limiting.
func NewSummarizerFunc(model string, complete CompleteFunc) *Summarizer {
	s := &Summarizer{
		complete: complete,
		model:    model,
		maxChars: cfg.MaxTranscriptChars,
		timeout:  cfg.LLMTimeout,
	}
	if n := cfg.LLMRequestsPerMin; n > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
	return s
}

// Model returns the model name used for display.
func (s *Summarizer) Model() string { return s.model }

// Summarize issues one request with the analysis prompt and returns the
// response text verbatim.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("llm rate limit: %w", err)
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	metrics.LLMCalls.Add(1)
	out, err := s.complete(ctx, BuildAnalysisPrompt(transcript, s.maxChars))
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return out, nil
}

// BuildAnalysisPrompt truncates transcript to maxChars runes and fills the
// analysis template. maxChars <= 0 disables truncation.
func BuildAnalysisPrompt(transcript string, maxChars int) string {
	if maxChars > 0 {
		transcript = TruncateRunes(transcript, maxChars, "")
	}
	return fmt.Sprintf(analysisPrompt, transcript)
}

// RawPreview returns the transcript cut to limit runes with "..." appended
// when anything was cut.
func RawPreview(transcript string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(transcript) <= limit {
		return transcript
	}
	return TruncateRunes(transcript, limit, "") + "..."
}
