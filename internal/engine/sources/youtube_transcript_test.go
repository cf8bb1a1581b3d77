package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
)

const testVideoID = "dQw4w9WgXcQ"

const legacyTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">We&amp;#39;re no strangers</text>
<text start="2.6" dur="1.9">to &lt;font color=&quot;#E5E5E5&quot;&gt;love&lt;/font&gt;</text>
<text start="4.5" dur="1.0"></text>
<text start="5.5" dur="3.0">you know the rules
and so do I</text>
</transcript>`

func playerJSON(t *testing.T, status string, tracks []captionTrack) string {
	t.Helper()
	pr := map[string]any{
		"playabilityStatus": map[string]any{"status": status},
	}
	if tracks != nil {
		pr["captions"] = map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": tracks},
		}
	}
	b, err := json.Marshal(pr)
	require.NoError(t, err)
	return string(b)
}

// fakeYouTube serves a watch page, the ANDROID player endpoint and timedtext.
type fakeYouTube struct {
	watchPage   func(baseURL string) string
	player      func(baseURL string) string
	timedText   string
	playerCalls atomic.Int32
}

func (f *fakeYouTube) start(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != testVideoID {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, f.watchPage(srv.URL))
	})
	mux.HandleFunc(ytPlayerPath, func(w http.ResponseWriter, r *http.Request) {
		f.playerCalls.Add(1)
		if f.player == nil {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.player(srv.URL))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, f.timedText)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := engine.DefaultConfig()
	c.YouTubeBaseURL = srv.URL
	c.HTTPClient = srv.Client()
	c.FetchTimeout = 5 * time.Second
	engine.Init(c)
	t.Cleanup(func() { engine.Init(engine.DefaultConfig()) })
	return srv
}

func watchPageWith(playerJSON string) string {
	return `<html><head><script>var ytInitialPlayerResponse = ` + playerJSON +
		`;var meta = {"a":1};</script></head><body></body></html>`
}

func enTrack(baseURL string) []captionTrack {
	return []captionTrack{
		{BaseURL: baseURL + "/api/timedtext?v=" + testVideoID + "&lang=de", LanguageCode: "de"},
		{BaseURL: baseURL + "/api/timedtext?v=" + testVideoID + "&lang=en", LanguageCode: "en"},
	}
}

func TestFetchYouTubeTranscriptViaWatchPage(t *testing.T) {
	f := &fakeYouTube{timedText: legacyTimedText}
	f.watchPage = func(base string) string { return watchPageWith(playerJSON(t, "OK", enTrack(base))) }
	f.start(t)

	got, err := FetchYouTubeTranscript(context.Background(), testVideoID, []string{"en"})
	require.NoError(t, err)
	assert.Equal(t, "We're no strangers to love you know the rules and so do I", got)
	assert.Zero(t, f.playerCalls.Load(), "player fallback should not be used")
}

func TestFetchYouTubeTranscriptDisabled(t *testing.T) {
	f := &fakeYouTube{}
	f.watchPage = func(string) string { return watchPageWith(playerJSON(t, "OK", nil)) }
	f.start(t)

	_, err := FetchYouTubeTranscript(context.Background(), testVideoID, nil)
	require.ErrorIs(t, err, engine.ErrTranscriptsDisabled)
	assert.Equal(t, "Transcripts are disabled for this video.", engine.UserMessage(err))
	assert.Zero(t, f.playerCalls.Load(), "disabled is authoritative, no fallback")
}

func TestFetchYouTubeTranscriptNoTranscriptFound(t *testing.T) {
	f := &fakeYouTube{timedText: legacyTimedText}
	f.watchPage = func(base string) string { return watchPageWith(playerJSON(t, "OK", enTrack(base))) }
	f.start(t)

	_, err := FetchYouTubeTranscript(context.Background(), testVideoID, []string{"fr", "es"})
	require.ErrorIs(t, err, engine.ErrNoTranscriptFound)
	assert.Equal(t, "No transcript found for this video.", engine.UserMessage(err))
}

func TestFetchYouTubeTranscriptFallsBackToPlayer(t *testing.T) {
	f := &fakeYouTube{timedText: legacyTimedText}
	f.watchPage = func(string) string { return "<html>consent wall</html>" }
	f.player = func(base string) string { return playerJSON(t, "OK", enTrack(base)) }
	f.start(t)

	got, err := FetchYouTubeTranscript(context.Background(), testVideoID, []string{"en"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "We're no strangers"))
	assert.EqualValues(t, 1, f.playerCalls.Load())
}

func TestFetchYouTubeTranscriptBothPathsFail(t *testing.T) {
	f := &fakeYouTube{}
	f.watchPage = func(string) string { return "<html></html>" }
	f.start(t)

	_, err := FetchYouTubeTranscript(context.Background(), testVideoID, []string{"en"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, engine.ErrTranscriptsDisabled)
	assert.NotErrorIs(t, err, engine.ErrNoTranscriptFound)
	assert.Contains(t, engine.UserMessage(err), "HTTP 403")
}

func TestSelectTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "https://x/tt?lang=en", LanguageCode: "en"}
	autoEN := captionTrack{BaseURL: "https://x/tt?lang=en&kind=asr", LanguageCode: "en", Kind: "asr"}
	manualDE := captionTrack{BaseURL: "https://x/tt?lang=de", LanguageCode: "de"}
	autoDE := captionTrack{BaseURL: "https://x/tt?lang=de&kind=asr", LanguageCode: "de", Kind: "asr"}
	manualZH := captionTrack{BaseURL: "https://x/tt?lang=zh-Hans", LanguageCode: "zh-Hans"}
	poTokenEN := captionTrack{BaseURL: "https://x/tt?lang=en&exp=xpe", LanguageCode: "en"}

	withTracks := func(status string, tracks ...captionTrack) *playerResp {
		var pr playerResp
		require.NoError(t, json.Unmarshal([]byte(playerJSON(t, status, tracks)), &pr))
		return &pr
	}

	t.Run("no captions means disabled", func(t *testing.T) {
		var pr playerResp
		require.NoError(t, json.Unmarshal([]byte(playerJSON(t, "OK", nil)), &pr))
		_, err := selectTrack(&pr, []string{"en"})
		assert.ErrorIs(t, err, engine.ErrTranscriptsDisabled)
	})

	t.Run("unplayable video is a plain error", func(t *testing.T) {
		pr := &playerResp{}
		require.NoError(t, json.Unmarshal([]byte(`{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`), pr))
		_, err := selectTrack(pr, []string{"en"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, engine.ErrTranscriptsDisabled)
		assert.Contains(t, err.Error(), "Video unavailable")
	})

	t.Run("manual preferred over auto", func(t *testing.T) {
		got, err := selectTrack(withTracks("OK", autoEN, manualEN), []string{"en"})
		require.NoError(t, err)
		assert.Equal(t, manualEN, got)
	})

	t.Run("auto used when no manual", func(t *testing.T) {
		got, err := selectTrack(withTracks("OK", autoEN, manualDE), []string{"en"})
		require.NoError(t, err)
		assert.Equal(t, autoEN, got)
	})

	t.Run("language order respected", func(t *testing.T) {
		got, err := selectTrack(withTracks("OK", manualEN, manualDE), []string{"de", "en"})
		require.NoError(t, err)
		assert.Equal(t, manualDE, got)
	})

	t.Run("auto in first language beats manual in second", func(t *testing.T) {
		got, err := selectTrack(withTracks("OK", manualEN, autoDE), []string{"de", "en"})
		require.NoError(t, err)
		assert.Equal(t, autoDE, got)
	})

	t.Run("mixed-case language code", func(t *testing.T) {
		got, err := selectTrack(withTracks("OK", manualEN, manualZH), []string{"zh-Hans"})
		require.NoError(t, err)
		assert.Equal(t, manualZH, got)

		got, err = selectTrack(withTracks("OK", manualEN, manualZH), []string{"zh-hans"})
		require.NoError(t, err)
		assert.Equal(t, manualZH, got)
	})

	t.Run("no language match", func(t *testing.T) {
		_, err := selectTrack(withTracks("OK", manualDE), []string{"en"})
		assert.ErrorIs(t, err, engine.ErrNoTranscriptFound)
	})

	t.Run("only po token tracks", func(t *testing.T) {
		_, err := selectTrack(withTracks("OK", poTokenEN), []string{"en"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, engine.ErrNoTranscriptFound)
		assert.Contains(t, err.Error(), "PoToken")
	})
}

func TestParseTimedTextFormat3(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8" ?><timedtext format="3"><body>
<p t="0" d="1500"><s>Never</s><s t="300"> gonna</s><s t="600"> give</s></p>
<p t="1500" d="1200">you up &amp; down</p>
</body></timedtext>`
	got, err := parseTimedText([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "Never gonna give you up & down", got)
}

func TestParseTimedTextInvalid(t *testing.T) {
	_, err := parseTimedText([]byte("<transcript><text>unclosed"))
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":[1,{"c":2}]}} trailing`, `{"a":{"b":[1,{"c":2}]}}`},
		{"brace in string", `{"a":"}{"} x`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"}\""} x`, `{"a":"say \"}\""}`},
		{"escaped backslash", `{"a":"c:\\"} x`, `{"a":"c:\\"}`},
		{"not an object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}
