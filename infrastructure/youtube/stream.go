package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"yt-clipper/domain/video"
)

// DefaultChunkSize is the size of each ranged request against the stream locator
const DefaultChunkSize int64 = 10 << 20

// errRangeDone marks a range request past the end of the stream
var errRangeDone = errors.New("range not satisfiable")

// Streamer implements video.StreamOpener with sequential HTTP range requests.
// Upstream throttles single long-lived downloads, so the stream is fetched in chunks.
type Streamer struct {
	client    *http.Client
	chunkSize int64
}

// StreamerOption is a functional option for configuring Streamer
type StreamerOption func(*Streamer)

// WithChunkSize sets the size of each range request
func WithChunkSize(n int64) StreamerOption {
	return func(s *Streamer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithStreamClient sets a custom HTTP client (for testing)
func WithStreamClient(client *http.Client) StreamerOption {
	return func(s *Streamer) {
		s.client = client
	}
}

// NewStreamer creates a new chunked stream opener
func NewStreamer(opts ...StreamerOption) *Streamer {
	s := &Streamer{
		client:    &http.Client{},
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type chunk struct {
	body   io.ReadCloser
	ranged bool
	// total is the stream size from Content-Range, -1 if unknown
	total int64
}

// Open implements video.StreamOpener. The first range request is made before
// Open returns so locator failures surface before any output is produced.
func (s *Streamer) Open(ctx context.Context, stream video.AudioFormat) (io.ReadCloser, error) {
	if stream.URL == "" {
		return nil, fmt.Errorf("%w: stream has no locator", video.ErrExtraction)
	}

	ctx, cancel := context.WithCancel(ctx)
	first, err := s.fetch(ctx, stream.URL, 0)
	if err != nil {
		cancel()
		if errors.Is(err, errRangeDone) {
			return nil, fmt.Errorf("%w: stream is empty", video.ErrExtraction)
		}
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.copyChunks(ctx, stream, first, pw))
	}()

	return &remoteStream{PipeReader: pr, cancel: cancel}, nil
}

func (s *Streamer) fetch(ctx context.Context, url string, offset int64) (*chunk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid stream locator: %v", video.ErrExtraction, err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+s.chunkSize-1))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting stream: %w", video.ErrExtraction, err)
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return &chunk{body: resp.Body, ranged: true, total: contentRangeTotal(resp.Header.Get("Content-Range"))}, nil
	case http.StatusOK:
		return &chunk{body: resp.Body, total: -1}, nil
	case http.StatusRequestedRangeNotSatisfiable:
		resp.Body.Close()
		return nil, errRangeDone
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: stream returned status %d", video.ErrExtraction, resp.StatusCode)
	}
}

func (s *Streamer) copyChunks(ctx context.Context, stream video.AudioFormat, c *chunk, w io.Writer) error {
	var offset int64
	total := stream.ContentLength

	for {
		n, err := io.Copy(w, c.body)
		c.body.Close()
		offset += n
		if err != nil {
			return fmt.Errorf("%w: reading stream at byte %d: %w", video.ErrExtraction, offset, err)
		}

		// a plain 200 carries the whole stream
		if !c.ranged || n == 0 {
			return nil
		}
		if total <= 0 {
			total = c.total
		}
		if total > 0 && offset >= total {
			return nil
		}
		if total <= 0 && n < s.chunkSize {
			return nil
		}

		c, err = s.fetch(ctx, stream.URL, offset)
		if errors.Is(err, errRangeDone) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// contentRangeTotal parses the size from "bytes 0-99/1234"
func contentRangeTotal(header string) int64 {
	_, size, found := strings.Cut(header, "/")
	if !found || size == "*" {
		return -1
	}
	n, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// remoteStream cancels in-flight range requests when closed
type remoteStream struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (r *remoteStream) Close() error {
	r.cancel()
	return r.PipeReader.Close()
}

// Ensure Streamer implements video.StreamOpener
var _ video.StreamOpener = (*Streamer)(nil)
