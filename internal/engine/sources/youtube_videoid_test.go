package sources

import (
	"errors"
	"testing"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
)

func TestExtractVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	tests := []struct {
		name  string
		input string
	}{
		{"watch url", "https://www.youtube.com/watch?v=" + id},
		{"watch url with extra params", "https://www.youtube.com/watch?v=" + id + "&t=42s&list=PL123"},
		{"watch url param not first", "https://www.youtube.com/watch?feature=share&v=" + id},
		{"mobile watch url", "https://m.youtube.com/watch?v=" + id},
		{"embed url", "https://www.youtube.com/embed/" + id},
		{"embed url with query", "https://www.youtube.com/embed/" + id + "?autoplay=1"},
		{"short link", "https://youtu.be/" + id},
		{"short link with timestamp", "https://youtu.be/" + id + "?t=10"},
		{"shorts url", "https://www.youtube.com/shorts/" + id},
		{"no scheme", "youtube.com/watch?v=" + id},
		{"bare id", id},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) error: %v", tt.input, err)
			}
			if got != id {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, id)
			}
		})
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"dQw4w9WgXc",   // 10 chars
		"dQw4w9WgXcQQ", // 12 chars
		"https://example.com/",
		"https://www.youtube.com/watch?list=PL1",
		"dQw4w9Wg!cQ",
		" dQw4w9WgXcQ ", // bare ID is matched exactly
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ExtractVideoID(in)
			if !errors.Is(err, engine.ErrInvalidVideoID) {
				t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidVideoID", in, err)
			}
		})
	}
}

func TestExtractVideoIDFirstPatternWins(t *testing.T) {
	// watch?v= is tried before embed/.
	got, err := ExtractVideoID("https://www.youtube.com/watch?v=AAAAAAAAAAA&next=embed/BBBBBBBBBBB")
	if err != nil {
		t.Fatal(err)
	}
	if got != "AAAAAAAAAAA" {
		t.Errorf("got %q, want AAAAAAAAAAA", got)
	}
}
