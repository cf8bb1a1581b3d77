package engine

import (
	"net/http"
	"time"
)

// DefaultMaxTranscriptChars caps the transcript text sent to the LLM.
const DefaultMaxTranscriptChars = 30000

// DefaultRawPreviewChars caps the raw transcript shown when AI analysis is off.
const DefaultRawPreviewChars = 2000

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRequestsPerMin  int           // 0 = unlimited
	LLMTimeout         time.Duration // per summarization call

	MaxTranscriptChars int // runes of transcript sent to the LLM
	RawPreviewChars    int // runes of raw transcript printed without a key
	TranscriptLangs    []string

	YouTubeBaseURL string // overridable for tests
	FetchTimeout   time.Duration
	FetchRetries   int // transport retries on 429/5xx; 0 = single attempt

	OutputDir string

	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client
}

// DefaultConfig returns a config usable without any environment.
func DefaultConfig() Config {
	return Config{
		LLMAPIBase:           "https://generativelanguage.googleapis.com/v1beta/openai",
		LLMModel:             "gemini-2.5-flash",
		LLMTemperature:       0.3,
		LLMMaxTokens:         8192,
		LLMTimeout:           120 * time.Second,
		MaxTranscriptChars:   DefaultMaxTranscriptChars,
		RawPreviewChars:      DefaultRawPreviewChars,
		TranscriptLangs:      []string{"en"},
		YouTubeBaseURL:       "https://www.youtube.com",
		FetchTimeout:         30 * time.Second,
		OutputDir:            ".",
		CacheTTL:             24 * time.Hour,
		CacheMaxEntries:      200,
		CacheCleanupInterval: 10 * time.Minute,
		HTTPClient:           &http.Client{Timeout: 30 * time.Second},
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages (sources, analyzer).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero values fall back to DefaultConfig.
func Init(c Config) {
	d := DefaultConfig()
	if c.LLMAPIBase == "" {
		c.LLMAPIBase = d.LLMAPIBase
	}
	if c.LLMModel == "" {
		c.LLMModel = d.LLMModel
	}
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = d.MaxTranscriptChars
	}
	if c.RawPreviewChars <= 0 {
		c.RawPreviewChars = d.RawPreviewChars
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = d.TranscriptLangs
	}
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = d.YouTubeBaseURL
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = d.HTTPClient
	}
	cfg = c
	Cfg = &cfg
}
