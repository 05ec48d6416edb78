package clip

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"yt-clipper/domain/video"
)

type fakeResolver struct {
	source *video.Source
	err    error
	calls  atomic.Int32
	gate   chan struct{}
}

func (f *fakeResolver) Resolve(ctx context.Context, ref video.VideoReference) (*video.Source, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	src := *f.source
	src.Reference = ref
	return &src, nil
}

type fakeOpener struct {
	body   io.ReadCloser
	err    error
	stall  bool
	opened []video.AudioFormat
	closed bool
	mu     sync.Mutex
}

func (f *fakeOpener) Open(ctx context.Context, stream video.AudioFormat) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, stream)
	if f.err != nil {
		return nil, f.err
	}
	if f.stall {
		f.body = &stalledBody{ctx: ctx}
	}
	if f.body == nil {
		f.body = io.NopCloser(strings.NewReader("webm-audio"))
	}
	return &trackingCloser{ReadCloser: f.body, onClose: func() { f.closed = true }}, nil
}

type trackingCloser struct {
	io.ReadCloser
	onClose func()
}

func (t *trackingCloser) Close() error {
	t.onClose()
	return t.ReadCloser.Close()
}

// fakeEncoder copies its whole input to dst, prefixed with a marker
type fakeEncoder struct {
	jobs []video.EncodeJob
	err  error
}

func (f *fakeEncoder) Encode(ctx context.Context, src io.Reader, dst io.Writer, job video.EncodeJob) error {
	f.jobs = append(f.jobs, job)
	if _, err := io.WriteString(dst, "ID3:"); err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return f.err
}

// stalledBody never produces data; it unblocks only when its context is cancelled
type stalledBody struct {
	ctx context.Context
}

func (b *stalledBody) Read(p []byte) (int, error) {
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b *stalledBody) Close() error {
	return nil
}

func testSource() *video.Source {
	return &video.Source{
		Title:    "Lo-Fi Beats: Vol. 2!",
		Author:   "Chill Channel",
		Duration: 95,
		Stream: video.AudioFormat{
			Itag:     251,
			MimeType: `audio/webm; codecs="opus"`,
			URL:      "https://rr1.googlevideo.com/videoplayback?itag=251",
		},
	}
}
