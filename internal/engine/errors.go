package engine

import (
	"errors"
	"strings"
)

// Distinguished pipeline failures. Everything else is reported with its raw text.
var (
	ErrInvalidVideoID      = errors.New("could not extract video ID")
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	ErrNoTranscriptFound   = errors.New("no transcript found")
	ErrNoCredential        = errors.New("no LLM API key configured")
)

// UserMessage renders err as the single line shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTranscriptsDisabled):
		return "Transcripts are disabled for this video."
	case errors.Is(err, ErrNoTranscriptFound):
		return "No transcript found for this video."
	case errors.Is(err, ErrInvalidVideoID):
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	default:
		return err.Error()
	}
}
