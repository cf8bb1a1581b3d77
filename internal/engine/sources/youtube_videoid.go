package sources

import (
	"fmt"
	"regexp"

	"github.com/anatolykoptev/go_ytanalyzer/internal/engine"
)

// videoIDPatterns are tried in order; the first match wins.
// The first one also covers /shorts/<id>, /live/<id> and youtu.be/<id>.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`), // watch?v=, path segment
	regexp.MustCompile(`embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
}

var bareVideoIDRE = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ExtractVideoID pulls the 11-char video ID out of a YouTube URL, or accepts
// a bare ID. Input is matched as given; a bare ID with surrounding
// whitespace is rejected. Returns engine.ErrInvalidVideoID when nothing matches.
func ExtractVideoID(input string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); len(m) >= 2 {
			return m[1], nil
		}
	}
	if bareVideoIDRE.MatchString(input) {
		return input, nil
	}
	return "", fmt.Errorf("%w from: %s", engine.ErrInvalidVideoID, input)
}
