package engine

import (
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the speaking rate used to estimate video duration.
const WordsPerMinute = 150

// ComputeStats derives word/character counts and an estimated duration.
// Words are whitespace-separated tokens; characters are Unicode code points.
func ComputeStats(transcript string) Stats {
	words := len(strings.Fields(transcript))
	return Stats{
		WordCount:                words,
		CharCount:                utf8.RuneCountInString(transcript),
		EstimatedDurationMinutes: words / WordsPerMinute,
	}
}
