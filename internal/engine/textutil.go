package engine

import (
	"io"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
)

// UserAgentBot identifies plain API requests (timedtext).
const UserAgentBot = "GoYTAnalyzer/1.0"

// CleanCaption strips inline markup (<font>, <i>, ...) from a caption line,
// decodes HTML entities and collapses whitespace to single spaces.
func CleanCaption(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
			}
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// FormatCount renders n with thousands separators: 12345 → "12,345".
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
