package video

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLFormat = "https://i.ytimg.com/vi/%s/maxresdefault.jpg"
)

// embedPathRegex matches the id segment of /embed/<id> paths
var embedPathRegex = regexp.MustCompile(`/embed/([^/?]+)`)

// VideoReference identifies a single YouTube video
type VideoReference struct {
	ID string
}

// NewVideoReference creates a reference from a bare video id
func NewVideoReference(id string) (VideoReference, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return VideoReference{}, fmt.Errorf("%w: missing video ID", ErrInvalidInput)
	}
	return VideoReference{ID: id}, nil
}

// ParseVideoURL extracts the video id from a YouTube URL.
// youtu.be/<id>, youtube.com/watch?v=<id> and youtube.com/embed/<id> are accepted.
func ParseVideoURL(raw string) (VideoReference, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return VideoReference{}, fmt.Errorf("%w: invalid YouTube URL %q", ErrInvalidInput, raw)
	}

	var id string
	switch u.Hostname() {
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	case "youtube.com", "www.youtube.com":
		id = u.Query().Get("v")
		if id == "" {
			if m := embedPathRegex.FindStringSubmatch(u.Path); m != nil {
				id = m[1]
			}
		}
	}

	if id == "" {
		return VideoReference{}, fmt.Errorf("%w: invalid YouTube URL %q", ErrInvalidInput, raw)
	}
	return VideoReference{ID: id}, nil
}

// ParseVideoInput accepts either a YouTube URL or a bare video id
func ParseVideoInput(s string) (VideoReference, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		return ParseVideoURL(s)
	}
	return NewVideoReference(s)
}

// WatchURL returns the canonical watch page URL
func (r VideoReference) WatchURL() string {
	return fmt.Sprintf(watchURLFormat, r.ID)
}

// ThumbnailURL returns the fixed-pattern thumbnail URL; its existence is not checked
func (r VideoReference) ThumbnailURL() string {
	return fmt.Sprintf(thumbnailURLFormat, r.ID)
}

func (r VideoReference) String() string {
	return r.ID
}
