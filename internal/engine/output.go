package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// rule is the 60-char separator used in console output and transcript files.
var rule = strings.Repeat("=", 60)

// TranscriptFileName returns the per-run output file name for videoID.
func TranscriptFileName(videoID string) string {
	return "transcript_" + videoID + ".txt"
}

// WriteTranscriptFile writes the header block and full transcript to
// dir/transcript_<id>.txt and returns the path written.
func WriteTranscriptFile(dir string, r *Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, TranscriptFileName(r.VideoID))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Video ID: %s\n", r.VideoID)
	fmt.Fprintf(&sb, "URL: %s\n", r.URL)
	fmt.Fprintf(&sb, "Word count: %d\n", r.Stats.WordCount)
	sb.WriteString(rule + "\n\n")
	sb.WriteString(r.Transcript)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil { //nolint:gosec // user-readable output
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// PrintStats writes the BASIC STATS block.
func PrintStats(w io.Writer, s Stats) {
	section(w, "BASIC STATS")
	fmt.Fprintf(w, "Word count: %s\n", FormatCount(s.WordCount))
	fmt.Fprintf(w, "Character count: %s\n", FormatCount(s.CharCount))
	fmt.Fprintf(w, "Estimated duration: ~%d minutes\n", s.EstimatedDurationMinutes)
}

// PrintAnalysisHeader writes the AI ANALYSIS section title.
func PrintAnalysisHeader(w io.Writer, model string) {
	title := "AI ANALYSIS"
	if model != "" {
		title += " (" + model + ")"
	}
	section(w, title)
}

// PrintAnalysis writes either the AI analysis block or the raw preview block.
func PrintAnalysis(w io.Writer, r *Report, previewChars int) {
	if r.AIUsed {
		PrintAnalysisHeader(w, r.Model)
		fmt.Fprintln(w, r.Analysis)
		return
	}
	section(w, fmt.Sprintf("RAW TRANSCRIPT (first %d chars)", previewChars))
	fmt.Fprintln(w, r.RawPreview)
}

// PrintNoCredentialWarning writes the banner shown when summarization is off.
func PrintNoCredentialWarning(w io.Writer, envVar string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WARNING: No LLM API key found!")
	fmt.Fprintln(w, "To enable AI analysis:")
	fmt.Fprintln(w, "  1. Get a free Gemini key from https://ai.google.dev")
	fmt.Fprintf(w, "  2. Run: export %s='your_key_here'\n", envVar)
	fmt.Fprintln(w, "  3. Or put it in a .env file in the working directory")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nProceeding with transcript fetch only...")
	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}
