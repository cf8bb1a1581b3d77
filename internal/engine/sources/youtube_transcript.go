package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks → timedtext XML
// Fallback: ANDROID Innertube /player → captionTracks → timedtext XML
//
// "Transcripts disabled" and "no transcript in the requested languages" are
// authoritative answers from either path and end the fetch immediately.

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// FetchYouTubeTranscript fetches the transcript for videoID and joins its
// caption segments with single spaces. langs is the language preference
// order; empty means engine.Cfg.TranscriptLangs.
func FetchYouTubeTranscript(ctx context.Context, videoID string, langs []string) (string, error) {
	engine.IncrTranscriptRequests()
	if len(langs) == 0 {
		langs = engine.Cfg.TranscriptLangs
	}
	if engine.Cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
		defer cancel()
	}

	text, err := fetchTranscript(ctx, videoID, langs)
	if err != nil {
		engine.RecordTranscriptError(err)
		return "", err
	}
	return text, nil
}

func fetchTranscript(ctx context.Context, videoID string, langs []string) (string, error) {
	text, err := fetchTranscriptViaPageScrape(ctx, videoID, langs)
	if err == nil || isAuthoritative(err) {
		return text, err
	}
	slog.Warn("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("error", err))

	return fetchTranscriptViaPlayer(ctx, videoID, langs)
}

func isAuthoritative(err error) bool {
	return errors.Is(err, engine.ErrTranscriptsDisabled) ||
		errors.Is(err, engine.ErrNoTranscriptFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// fetchTranscriptViaPageScrape scrapes the watch page HTML and extracts the
// caption tracks from ytInitialPlayerResponse.
func fetchTranscriptViaPageScrape(ctx context.Context, videoID string, langs []string) (string, error) {
	watchURL := engine.Cfg.YouTubeBaseURL + "/watch?v=" + videoID

	resp, err := engine.RetryHTTP(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Cookie", ytConsentCookie)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return "", errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var pr playerResp
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	track, err := selectTrack(&pr, langs)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// fetchTranscriptViaPlayer uses the ANDROID Innertube /player endpoint.
func fetchTranscriptViaPlayer(ctx context.Context, videoID string, langs []string) (string, error) {
	pr, err := postPlayerANDROID(ctx, videoID)
	if err != nil {
		return "", err
	}
	track, err := selectTrack(pr, langs)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// selectTrack classifies a player response and picks the caption track to fetch.
func selectTrack(pr *playerResp, langs []string) (captionTrack, error) {
	tracks := pr.captionTracks()
	if len(tracks) == 0 {
		if ps := pr.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
			return captionTrack{}, fmt.Errorf("video unavailable (%s): %s", ps.Status, ps.Reason)
		}
		return captionTrack{}, engine.ErrTranscriptsDisabled
	}

	if _, ok := matchTrack(tracks, langs); !ok {
		return captionTrack{}, fmt.Errorf("%w: requested %s, available %s",
			engine.ErrNoTranscriptFound, strings.Join(langs, ","), trackLangs(tracks))
	}

	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	track, ok := matchTrack(usable, langs)
	if !ok {
		return captionTrack{}, errors.New("all matching caption tracks require PoToken")
	}
	return track, nil
}

// matchTrack walks langs in preference order and, within each language,
// prefers a manual track over an auto-generated one. Language codes compare
// case-insensitively ("zh-hans" matches "zh-Hans").
func matchTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	for _, lang := range langs {
		var auto *captionTrack
		for i, t := range tracks {
			if !strings.EqualFold(t.LanguageCode, lang) {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	return captionTrack{}, false
}

func trackLangs(tracks []captionTrack) string {
	codes := make([]string, 0, len(tracks))
	for _, t := range tracks {
		code := t.LanguageCode
		if t.Kind == "asr" {
			code += "(auto)"
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, ",")
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

// parseTimedText joins caption segments with single spaces.
func parseTimedText(body []byte) (string, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]string, 0, len(tt.Lines)+len(tt.Body.Paragraphs))
	for _, line := range tt.Lines {
		if text := engine.CleanCaption(line.Text); text != "" {
			segments = append(segments, text)
		}
	}
	for _, p := range tt.Body.Paragraphs {
		if text := engine.CleanCaption(p.Inner); text != "" {
			segments = append(segments, text)
		}
	}
	return strings.Join(segments, " "), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, esc := false, false
	for i, c := range b {
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
