// Package youtube resolves video references into audio streams using the
// public YouTube player endpoints.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/cookies"

	"github.com/kkdai/youtube/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// VideoService defines the upstream operations the resolver needs.
// This allows mocking the YouTube client in tests
type VideoService interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, v *youtube.Video, format *youtube.Format) (string, error)
}

// ServiceFactory builds a VideoService bound to one HTTP client
type ServiceFactory func(client *http.Client) VideoService

// Credentials provides the session cookies attached to upstream calls
type Credentials interface {
	Current() (*cookies.Snapshot, error)
	Invalidate()
}

// Resolver implements video.Resolver
type Resolver struct {
	credentials        Credentials
	requireCredentials bool
	limiter            *rate.Limiter
	newService         ServiceFactory
	transport          http.RoundTripper
	timeout            time.Duration
	log                logrus.FieldLogger
}

// ResolverOption is a functional option for configuring Resolver
type ResolverOption func(*Resolver)

// WithCredentials attaches session cookies to every resolve.
// When required is true a missing cookie file fails the resolve.
func WithCredentials(creds Credentials, required bool) ResolverOption {
	return func(r *Resolver) {
		r.credentials = creds
		r.requireCredentials = required
	}
}

// NewLimiter returns a limiter for upstream calls. A non-positive rps disables throttling.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// WithRateLimit throttles upstream calls
func WithRateLimit(rps float64, burst int) ResolverOption {
	return func(r *Resolver) {
		r.limiter = NewLimiter(rps, burst)
	}
}

// WithLimiter shares an existing limiter, so several resolvers draw from one budget
func WithLimiter(l *rate.Limiter) ResolverOption {
	return func(r *Resolver) {
		r.limiter = l
	}
}

// WithServiceFactory sets a custom upstream client (for testing)
func WithServiceFactory(f ServiceFactory) ResolverOption {
	return func(r *Resolver) {
		r.newService = f
	}
}

// WithTransport sets the HTTP transport used for upstream calls
func WithTransport(rt http.RoundTripper) ResolverOption {
	return func(r *Resolver) {
		r.transport = rt
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver creates a new YouTube resolver
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		limiter: rate.NewLimiter(rate.Inf, 0),
		newService: func(client *http.Client) VideoService {
			return &youtube.Client{HTTPClient: client}
		},
		transport: http.DefaultTransport,
		timeout:   30 * time.Second,
		log:       logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve implements video.Resolver
func (r *Resolver) Resolve(ctx context.Context, ref video.VideoReference) (*video.Source, error) {
	client, err := r.httpClient()
	if err != nil {
		return nil, err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for upstream: %w", video.ErrResolution, err)
	}

	svc := r.newService(client)
	v, err := svc.GetVideoContext(ctx, ref.ID)
	if err != nil {
		return nil, r.upstreamError("fetch video metadata", ref, err)
	}

	formats := lo.Map(v.Formats, func(f youtube.Format, _ int) video.AudioFormat {
		return toAudioFormat(f)
	})
	best, err := video.SelectBestAudio(formats)
	if err != nil {
		return nil, fmt.Errorf("%w (video %s)", err, ref)
	}

	format, _ := lo.Find(v.Formats, func(f youtube.Format) bool {
		return f.ItagNo == best.Itag
	})
	streamURL, err := svc.GetStreamURLContext(ctx, v, &format)
	if err != nil {
		return nil, r.upstreamError("resolve stream url", ref, err)
	}
	best.URL = streamURL

	r.log.WithFields(logrus.Fields{
		"video_id": ref.ID,
		"itag":     best.Itag,
		"format":   best.String(),
	}).Debug("Resolved audio stream")

	return &video.Source{
		Reference: ref,
		Title:     v.Title,
		Author:    v.Author,
		Duration:  int(v.Duration / time.Second),
		Stream:    best,
	}, nil
}

// httpClient builds a client carrying a private jar seeded from the current credentials
func (r *Resolver) httpClient() (*http.Client, error) {
	client := &http.Client{Transport: r.transport, Timeout: r.timeout}
	if r.credentials == nil {
		if r.requireCredentials {
			return nil, fmt.Errorf("%w: cookie file not found", video.ErrConfiguration)
		}
		return client, nil
	}

	snap, err := r.credentials.Current()
	if err != nil {
		if r.requireCredentials {
			return nil, err
		}
		r.log.WithError(err).Debug("Resolving without cookies")
		return client, nil
	}

	client.Jar = snap.NewJar()
	return client, nil
}

func (r *Resolver) upstreamError(op string, ref video.VideoReference, err error) error {
	if isRejected(err) && r.credentials != nil {
		r.log.WithField("video_id", ref.ID).Warn("Upstream rejected the session, requesting cookie refresh")
		r.credentials.Invalidate()
	}
	return fmt.Errorf("%w: %s for %s: %w", video.ErrResolution, op, ref, err)
}

// isRejected reports whether upstream refused the request because of the session
func isRejected(err error) bool {
	var status youtube.ErrUnexpectedStatusCode
	if errors.As(err, &status) {
		return status == http.StatusUnauthorized || status == http.StatusForbidden
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "login required") || strings.Contains(msg, "sign in to confirm")
}

func toAudioFormat(f youtube.Format) video.AudioFormat {
	return video.AudioFormat{
		Itag:           f.ItagNo,
		MimeType:       f.MimeType,
		Bitrate:        f.Bitrate,
		AverageBitrate: f.AverageBitrate,
		AudioQuality:   f.AudioQuality,
		SampleRate:     parseSampleRate(f.AudioSampleRate),
		Channels:       f.AudioChannels,
		ContentLength:  f.ContentLength,
		URL:            f.URL,
	}
}

func parseSampleRate(s string) int {
	hz, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return hz
}

// Ensure Resolver implements video.Resolver
var _ video.Resolver = (*Resolver)(nil)
