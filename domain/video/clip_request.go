package video

import (
	"fmt"
	"regexp"
	"strings"
)

// Default window used when the caller omits start or end
const (
	DefaultClipStart = 0
	DefaultClipEnd   = 30
)

// titleStripRegex matches everything that is not a word character or whitespace
var titleStripRegex = regexp.MustCompile(`[^\w\s]`)

// ClipRequest represents a request to extract the [Start, End) window of a video's audio
type ClipRequest struct {
	Reference VideoReference
	Window    Segment
}

// NewClipRequest creates a new ClipRequest with validation.
// Zero-length and inverted windows are rejected rather than producing an empty artifact.
func NewClipRequest(videoID string, start, end int) (*ClipRequest, error) {
	ref, err := NewVideoReference(videoID)
	if err != nil {
		return nil, err
	}

	req := &ClipRequest{
		Reference: ref,
		Window:    Segment{Start: start, End: end},
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the window without knowing the video's duration
func (r *ClipRequest) Validate() error {
	if r.Reference.ID == "" {
		return fmt.Errorf("%w: missing video ID", ErrInvalidInput)
	}
	if r.Window.Start < 0 {
		return fmt.Errorf("%w: start %d must not be negative", ErrInvalidInput, r.Window.Start)
	}
	if r.Window.End <= r.Window.Start {
		return fmt.Errorf("%w: end %d must be after start %d", ErrInvalidInput, r.Window.End, r.Window.Start)
	}
	return nil
}

// ValidateAgainst checks the window against the resolved duration.
// It must pass before the remote stream is opened.
func (r *ClipRequest) ValidateAgainst(duration int) error {
	if r.Window.Start >= duration {
		return fmt.Errorf("%w: start %d is past the end of a %d second video", ErrInvalidInput, r.Window.Start, duration)
	}
	return r.Window.Validate(duration)
}

// OutputFilename returns <SanitizedTitle>_<start>-<end>.mp3
func (r *ClipRequest) OutputFilename(title string) string {
	return ClipFilename(title, r.Window.Start, r.Window.End)
}

// ClipFilename builds the suggested download filename from the title and literal bounds
func ClipFilename(title string, start, end int) string {
	return fmt.Sprintf("%s_%d-%d.mp3", SanitizeTitle(title), start, end)
}

// SanitizeTitle removes every character that is not a letter, digit, underscore or whitespace,
// then trims the result. An empty result becomes "audio".
func SanitizeTitle(title string) string {
	clean := strings.TrimSpace(titleStripRegex.ReplaceAllString(title, ""))
	if clean == "" {
		return "audio"
	}
	return clean
}
