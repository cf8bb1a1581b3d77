// Package toolutil provides shared input helpers for the CLI and MCP tools.
package toolutil

import "strings"

// ParseLanguages splits a comma-separated language list ("de, zh-Hans") into
// trimmed codes, keeping their case. Empty input returns nil (use the
// configured default).
func ParseLanguages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}
