// Package ytserver exposes the analyzer as MCP tools.
package ytserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytanalyzer/internal/analyzer"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
	"github.com/anatolykoptev/go_ytanalyzer/internal/engine/history"
	"github.com/anatolykoptev/go_ytanalyzer/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// HistoryEntry is one past run as returned by youtube_history.
type HistoryEntry struct {
	ID              int64  `json:"id"`
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	WordCount       int    `json:"word_count"`
	CharCount       int    `json:"char_count"`
	DurationMinutes int    `json:"estimated_duration_minutes"`
	Model           string `json:"model,omitempty"`
	Analysis        string `json:"analysis,omitempty"`
	CreatedAt       string `json:"created_at"` // RFC 3339
}

// YouTubeHistoryOutput is the structured output for youtube_history.
type YouTubeHistoryOutput struct {
	Records []HistoryEntry `json:"records"`
}

// RegisterTools registers youtube_analyze and youtube_history on server.
// store may be nil; youtube_history then reports that history is off.
func RegisterTools(server *mcp.Server, a *analyzer.Analyzer, store history.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_analyze",
		Description: "Fetch a YouTube video's transcript and analyze it. Returns word/character counts, an estimated duration, and an AI summary (summary, key points, notable quotes, topics) when an LLM key is configured, otherwise the first characters of the raw transcript.",
	}, analyzeHandler(a))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_history",
		Description: "List previously analyzed videos, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, historyHandler(store))
}

type analyzeFunc = func(context.Context, *mcp.CallToolRequest, engine.YouTubeAnalyzeInput) (*mcp.CallToolResult, engine.YouTubeAnalyzeOutput, error)

func analyzeHandler(a *analyzer.Analyzer) analyzeFunc {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.YouTubeAnalyzeInput) (*mcp.CallToolResult, engine.YouTubeAnalyzeOutput, error) {
		if strings.TrimSpace(input.URL) == "" {
			return nil, engine.YouTubeAnalyzeOutput{}, errors.New("url is required")
		}

		rep, err := a.ForLanguages(toolutil.ParseLanguages(input.Languages)).Run(ctx, input.URL)
		if err != nil {
			slog.Warn("youtube_analyze failed", slog.String("url", input.URL), slog.Any("error", err))
			return nil, engine.YouTubeAnalyzeOutput{}, errors.New(engine.UserMessage(err))
		}

		out := engine.YouTubeAnalyzeOutput{
			VideoID:    rep.VideoID,
			Stats:      rep.Stats,
			AIUsed:     rep.AIUsed,
			Analysis:   rep.Analysis,
			RawPreview: rep.RawPreview,
		}
		if input.SaveFile {
			path, err := engine.WriteTranscriptFile(engine.Cfg.OutputDir, rep)
			if err != nil {
				return nil, engine.YouTubeAnalyzeOutput{}, err
			}
			out.SavedTo = path
		}
		return nil, out, nil
	}
}

type historyFunc = func(context.Context, *mcp.CallToolRequest, engine.YouTubeHistoryInput) (*mcp.CallToolResult, YouTubeHistoryOutput, error)

func historyHandler(store history.Store) historyFunc {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.YouTubeHistoryInput) (*mcp.CallToolResult, YouTubeHistoryOutput, error) {
		if store == nil {
			return nil, YouTubeHistoryOutput{}, errors.New("history is disabled: set HISTORY_DB or DATABASE_URL")
		}
		recs, err := store.List(ctx, input.Limit)
		if err != nil {
			return nil, YouTubeHistoryOutput{}, err
		}
		out := YouTubeHistoryOutput{Records: make([]HistoryEntry, 0, len(recs))}
		for _, r := range recs {
			out.Records = append(out.Records, HistoryEntry{
				ID:              r.ID,
				VideoID:         r.VideoID,
				URL:             r.URL,
				WordCount:       r.WordCount,
				CharCount:       r.CharCount,
				DurationMinutes: r.DurationMinutes,
				Model:           r.Model,
				Analysis:        r.Analysis,
				CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return nil, out, nil
	}
}
