// go_ytanalyzer: YouTube transcript analyzer.
//
// CLI: go_ytanalyzer <youtube_url> fetches the transcript, prints stats and an
// AI analysis (or a raw preview without an LLM key) and writes
// transcript_<id>.txt. With -serve it runs as an MCP server exposing
// youtube_analyze and youtube_history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytanalyzer/internal/analyzer"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine/history"
	"github.com/anatolykoptev/go_ytanalyzer/internal/toolutil"
	"github.com/anatolykoptev/go_ytanalyzer/internal/ytserver"
)

const name = "go_ytanalyzer"

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	lang := fs.String("lang", "", "comma-separated transcript languages in preference order (default: TRANSCRIPT_LANGS or en)")
	outDir := fs.String("out", "", "directory for transcript_<id>.txt (default: OUTPUT_DIR or .)")
	showHistory := fs.Bool("history", false, "list the most recent analyzed videos and exit")
	serve := fs.Bool("serve", false, "run as an MCP server")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		return 0
	}

	defaultLevel := "warn"
	if *serve {
		defaultLevel = "info"
	}
	setupLogging(stderr, env.Str("LOG_LEVEL", defaultLevel))

	keyVar := initEngine(*lang, *outDir)

	ctx := context.Background()
	store, err := openHistory(ctx)
	if err != nil {
		slog.Warn("history disabled", slog.Any("error", err))
	}
	if store != nil {
		defer store.Close()
	}

	switch {
	case *serve:
		return runServer(store)
	case *showHistory:
		return printHistory(ctx, stdout, stderr, store)
	}

	if fs.NArg() < 1 {
		usage(stdout)
		return 1
	}

	if redisURL := env.Str("REDIS_URL", ""); redisURL != "" {
		initCache(redisURL)
	}

	a, err := newAnalyzer(stdout, store)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", engine.UserMessage(err))
		return 1
	}
	if !a.AIEnabled() {
		engine.PrintNoCredentialWarning(stdout, keyVar)
	}

	rep, err := a.Run(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", engine.UserMessage(err))
		return 1
	}

	path, err := engine.WriteTranscriptFile(engine.Cfg.OutputDir, rep)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", engine.UserMessage(err))
		return 1
	}
	fmt.Fprintf(stdout, "\nTranscript saved to: %s\n", path)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <youtube_url>\n", name)
	fmt.Fprintf(w, "Example: %s https://www.youtube.com/watch?v=dQw4w9WgXcQ\n", name)
	fmt.Fprintf(w, "\nOther modes:\n  %s -history\n  %s -serve\n", name, name)
}

func setupLogging(w io.Writer, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}

// initEngine builds the engine config from the environment and flags and
// returns the name of the env var holding the LLM key (for the warning banner).
func initEngine(langFlag, outFlag string) string {
	keyVar := "GEMINI_API_KEY"
	apiKey := env.Str("GEMINI_API_KEY", "")
	if apiKey == "" {
		if k := env.Str("LLM_API_KEY", ""); k != "" {
			apiKey, keyVar = k, "LLM_API_KEY"
		}
	}

	d := engine.DefaultConfig()
	c := engine.Config{
		LLMAPIKey:            apiKey,
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", d.LLMAPIBase),
		LLMModel:             env.Str("LLM_MODEL", d.LLMModel),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", d.LLMTemperature),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", d.LLMMaxTokens),
		LLMRequestsPerMin:    env.Int("LLM_RPM", 0),
		LLMTimeout:           env.Duration("LLM_TIMEOUT", d.LLMTimeout),
		MaxTranscriptChars:   env.Int("MAX_TRANSCRIPT_CHARS", engine.DefaultMaxTranscriptChars),
		RawPreviewChars:      env.Int("RAW_PREVIEW_CHARS", engine.DefaultRawPreviewChars),
		TranscriptLangs:      toolutil.ParseLanguages(env.Str("TRANSCRIPT_LANGS", "en")),
		YouTubeBaseURL:       env.Str("YOUTUBE_BASE_URL", d.YouTubeBaseURL),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		FetchRetries:         env.Int("FETCH_RETRIES", 0),
		OutputDir:            env.Str("OUTPUT_DIR", d.OutputDir),
		CacheTTL:             env.Duration("CACHE_TTL", d.CacheTTL),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	c.HTTPClient = newHTTPClient(c.FetchTimeout)
	if langs := toolutil.ParseLanguages(langFlag); len(langs) > 0 {
		c.TranscriptLangs = langs
	}
	if outFlag != "" {
		c.OutputDir = outFlag
	}
	engine.Init(c)
	return keyVar
}

// newHTTPClient bounds each request by the same limit as a whole fetch.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}

func initCache(redisURL string) {
	engine.InitCache(redisURL, engine.Cfg.CacheTTL, engine.Cfg.CacheMaxEntries, engine.Cfg.CacheCleanupInterval)
}

func openHistory(ctx context.Context) (history.Store, error) {
	return history.Open(ctx, env.Str("DATABASE_URL", ""), env.Str("HISTORY_DB", ""))
}

// newAnalyzer wires the summarizer when a key is configured. progress gets
// the step-by-step lines; nil means silent.
func newAnalyzer(progress io.Writer, store history.Store) (*analyzer.Analyzer, error) {
	opts := []analyzer.Option{}
	if progress != nil {
		opts = append(opts, analyzer.WithProgress(progress))
	}
	if store != nil {
		opts = append(opts, analyzer.WithHistory(store))
	}

	s, err := engine.NewSummarizer()
	switch {
	case err == nil:
		opts = append(opts, analyzer.WithSummarizer(s, s.Model()))
	case !errors.Is(err, engine.ErrNoCredential):
		return nil, err
	}
	return analyzer.New(opts...), nil
}

func printHistory(ctx context.Context, stdout, stderr io.Writer, store history.Store) int {
	if store == nil {
		fmt.Fprintln(stderr, "Error: history is disabled: set HISTORY_DB or DATABASE_URL")
		return 1
	}
	recs, err := store.List(ctx, history.DefaultListLimit)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if len(recs) == 0 {
		fmt.Fprintln(stdout, "No analyzed videos yet.")
		return 0
	}
	for _, r := range recs {
		ai := "raw"
		if r.Model != "" {
			ai = r.Model
		}
		fmt.Fprintf(stdout, "%s  %s  %s words  ~%d min  [%s]  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.VideoID,
			engine.FormatCount(r.WordCount), r.DurationMinutes, ai, r.URL)
	}
	return 0
}

func runServer(store history.Store) int {
	port := env.Str("MCP_PORT", "8892")
	initCache(env.Str("REDIS_URL", ""))

	a, err := newAnalyzer(nil, store)
	if err != nil {
		slog.Error("analyzer init failed", slog.Any("error", err))
		return 1
	}

	slog.Info("starting "+name,
		slog.String("port", port),
		slog.Bool("ai", a.AIEnabled()),
		slog.Bool("history", store != nil),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, a, store)
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         name,
		Version:      version,
		Port:         port,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		return 1
	}
	return 0
}
