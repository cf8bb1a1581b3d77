package engine

import "time"

// Stats is computed once from a transcript and never mutated.
type Stats struct {
	WordCount                int `json:"word_count"`
	CharCount                int `json:"char_count"`
	EstimatedDurationMinutes int `json:"estimated_duration_minutes"`
}

// Report is the result of one analyzer run.
type Report struct {
	VideoID    string    `json:"video_id"`
	URL        string    `json:"url"`
	Transcript string    `json:"-"`
	Stats      Stats     `json:"stats"`
	Analysis   string    `json:"analysis,omitempty"`    // verbatim LLM output; empty without a key
	RawPreview string    `json:"raw_preview,omitempty"` // set when Analysis is skipped
	AIUsed     bool      `json:"ai_used"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- MCP tool types ---

// YouTubeAnalyzeInput is the input for the youtube_analyze tool.
type YouTubeAnalyzeInput struct {
	URL       string `json:"url" jsonschema:"YouTube URL (watch, embed, youtu.be, shorts) or bare 11-char video ID"`
	Languages string `json:"languages,omitempty" jsonschema:"Comma-separated transcript language codes in preference order (default: en)"`
	SaveFile  bool   `json:"save_file,omitempty" jsonschema:"Also write transcript_<id>.txt to the server output directory"`
}

// YouTubeAnalyzeOutput is the structured output for youtube_analyze.
type YouTubeAnalyzeOutput struct {
	VideoID    string `json:"video_id"`
	Stats      Stats  `json:"stats"`
	AIUsed     bool   `json:"ai_used"`
	Analysis   string `json:"analysis,omitempty"`
	RawPreview string `json:"raw_preview,omitempty"`
	SavedTo    string `json:"saved_to,omitempty"`
}

// YouTubeHistoryInput is the input for the youtube_history tool.
type YouTubeHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max records (default: 20, max: 100)"`
}
