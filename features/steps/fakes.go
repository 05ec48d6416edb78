//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"strings"

	"yt-clipper/domain/video"
)

// fakeResolver serves sources from memory
type fakeResolver struct {
	sources       map[string]*video.Source
	missingCookie bool
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{sources: make(map[string]*video.Source)}
}

func (f *fakeResolver) add(id, title string, duration int) {
	f.sources[id] = &video.Source{
		Reference: video.VideoReference{ID: id},
		Title:     title,
		Author:    "Test Channel",
		Duration:  duration,
		Stream: video.AudioFormat{
			Itag:     251,
			MimeType: `audio/webm; codecs="opus"`,
			Bitrate:  160000,
			URL:      "https://rr1.googlevideo.com/videoplayback?itag=251&id=" + id,
		},
	}
}

func (f *fakeResolver) Resolve(ctx context.Context, ref video.VideoReference) (*video.Source, error) {
	if f.missingCookie {
		return nil, fmt.Errorf("%w: cookie file not found", video.ErrConfiguration)
	}
	src, ok := f.sources[ref.ID]
	if !ok {
		return nil, fmt.Errorf("%w: video %s unavailable", video.ErrResolution, ref.ID)
	}
	return src, nil
}

// fakeOpener records which streams were opened
type fakeOpener struct {
	opened []video.AudioFormat
}

func (f *fakeOpener) Open(ctx context.Context, stream video.AudioFormat) (io.ReadCloser, error) {
	f.opened = append(f.opened, stream)
	return io.NopCloser(strings.NewReader("webm-audio")), nil
}

// fakeEncoder writes a marker followed by its input
type fakeEncoder struct {
	jobs []video.EncodeJob
}

func (f *fakeEncoder) Encode(ctx context.Context, src io.Reader, dst io.Writer, job video.EncodeJob) error {
	f.jobs = append(f.jobs, job)
	if _, err := io.WriteString(dst, "ID3"); err != nil {
		return err
	}
	_, err := io.Copy(dst, src)
	return err
}
