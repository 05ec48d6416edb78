package clip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"yt-clipper/domain/video"

	"github.com/sirupsen/logrus"
)

// Clip is a validated extraction whose bytes have not been fetched yet
type Clip struct {
	Request  *video.ClipRequest
	Source   *video.Source
	Filename string
}

// ExtractService coordinates clip extraction: resolve, validate, stream and encode
type ExtractService struct {
	resolver     video.Resolver
	opener       video.StreamOpener
	encoder      video.Encoder
	stallTimeout time.Duration
	log          logrus.FieldLogger
}

// ExtractOption is a functional option for configuring ExtractService
type ExtractOption func(*ExtractService)

// WithStallTimeout fails a clip when the source makes no progress for d
func WithStallTimeout(d time.Duration) ExtractOption {
	return func(s *ExtractService) {
		s.stallTimeout = d
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) ExtractOption {
	return func(s *ExtractService) {
		s.log = log
	}
}

// NewExtractService creates a new ExtractService
func NewExtractService(resolver video.Resolver, opener video.StreamOpener, encoder video.Encoder, opts ...ExtractOption) *ExtractService {
	s := &ExtractService{
		resolver:     resolver,
		opener:       opener,
		encoder:      encoder,
		stallTimeout: 20 * time.Second,
		log:          logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Prepare resolves the request and checks the window against the video's duration.
// No stream bytes are fetched.
func (s *ExtractService) Prepare(ctx context.Context, req *video.ClipRequest) (*Clip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	src, err := s.resolver.Resolve(ctx, req.Reference)
	if err != nil {
		return nil, err
	}

	if err := req.ValidateAgainst(src.Duration); err != nil {
		return nil, err
	}

	return &Clip{
		Request:  req,
		Source:   src,
		Filename: req.OutputFilename(src.Title),
	}, nil
}

// Stream opens the remote audio and writes the encoded window to dst as it is produced.
// Cancelling ctx stops the upstream fetch and the encoder.
func (s *ExtractService) Stream(ctx context.Context, clip *Clip, dst io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := s.log.WithFields(logrus.Fields{
		"video_id": clip.Request.Reference.ID,
		"window":   clip.Request.Window.String(),
	})

	body, err := s.opener.Open(ctx, clip.Source.Stream)
	if err != nil {
		return err
	}
	defer body.Close()

	guard := newStallGuard(body, s.stallTimeout, cancel)
	job := video.EncodeJob{
		Window: clip.Request.Window,
		Title:  clip.Source.Title,
		Artist: clip.Source.Author,
	}

	start := time.Now()
	err = s.encoder.Encode(ctx, guard, dst, job)
	if guard.Stalled() {
		log.WithField("timeout", s.stallTimeout).Warn("Source stalled")
		return fmt.Errorf("%w: %w after %s", video.ErrExtraction, errStalled, s.stallTimeout)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Clip cancelled")
		}
		return err
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("Clip streamed")
	return nil
}
