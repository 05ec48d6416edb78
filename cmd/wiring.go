package cmd

import (
	"context"
	"fmt"

	"yt-clipper/application/clip"
	"yt-clipper/infrastructure/blob"
	"yt-clipper/infrastructure/config"
	"yt-clipper/infrastructure/cookies"
	"yt-clipper/infrastructure/drive"
	"yt-clipper/infrastructure/ffmpeg"
	"yt-clipper/infrastructure/httpapi"
	"yt-clipper/infrastructure/youtube"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// services holds the production dependency graph
type services struct {
	cookies  *cookies.Store
	source   cookies.Source
	encoder  *ffmpeg.Encoder
	metadata *clip.MetadataService
	extract  *clip.ExtractService
}

// newCookieSource returns nil when cookies are provisioned by hand
func newCookieSource(ctx context.Context, cfg *config.Config) (cookies.Source, error) {
	switch cfg.Cookies.Source {
	case config.CookieSourceHTTP:
		return blob.NewHTTPSource(cfg.Cookies.BlobURL, blob.WithToken(cfg.Cookies.BlobToken))
	case config.CookieSourceDrive:
		return drive.NewClient(ctx, cfg.Google.CredentialsFile, cfg.Cookies.DriveFileID)
	default:
		return nil, nil
	}
}

func newCookieStore(cfg *config.Config, source cookies.Source, log logrus.FieldLogger) *cookies.Store {
	opts := []cookies.StoreOption{
		cookies.WithMaxAge(cfg.Cookies.MaxAge.Duration),
		cookies.WithLogger(log.WithField("component", "cookies")),
	}
	if source != nil {
		opts = append(opts, cookies.WithSource(source))
	}
	return cookies.NewStore(afero.NewOsFs(), cfg.Cookies.Path, opts...)
}

func newServices(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*services, error) {
	source, err := newCookieSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up cookie source: %w", err)
	}
	store := newCookieStore(cfg, source, log)

	// metadata and clips share one upstream budget
	limiter := youtube.NewLimiter(cfg.YouTube.RequestsPerSecond, cfg.YouTube.Burst)
	resolverLog := log.WithField("component", "youtube")

	// metadata lookups work without cookies; clips need them when cookies.required is set
	metadataResolver := clip.NewCachingResolver(
		youtube.NewResolver(
			youtube.WithCredentials(store, false),
			youtube.WithLimiter(limiter),
			youtube.WithLogger(resolverLog),
		),
		cfg.YouTube.CacheSize, cfg.YouTube.CacheTTL.Duration, resolverLog,
	)
	clipResolver := clip.NewCachingResolver(
		youtube.NewResolver(
			youtube.WithCredentials(store, cfg.Cookies.Required),
			youtube.WithLimiter(limiter),
			youtube.WithLogger(resolverLog),
		),
		cfg.YouTube.CacheSize, cfg.YouTube.CacheTTL.Duration, resolverLog,
	)

	encoder := ffmpeg.NewEncoder(
		ffmpeg.WithFFmpegPath(cfg.Audio.FFmpegPath),
		ffmpeg.WithBitrate(cfg.Audio.Bitrate),
	)
	streamer := youtube.NewStreamer(youtube.WithChunkSize(cfg.YouTube.ChunkSize))

	return &services{
		cookies:  store,
		source:   source,
		encoder:  encoder,
		metadata: clip.NewMetadataService(metadataResolver),
		extract: clip.NewExtractService(clipResolver, streamer, encoder,
			clip.WithStallTimeout(cfg.Audio.StallTimeout.Duration),
			clip.WithLogger(log.WithField("component", "clip")),
		),
	}, nil
}

// refresher returns the store only when it has somewhere to refresh from
func (s *services) refresher() httpapi.CookieRefresher {
	if s.source == nil {
		return nil
	}
	return s.cookies
}

// loadCookies reads the local artifact, pulling one from the source when none exists yet
func (s *services) loadCookies(ctx context.Context, log logrus.FieldLogger) {
	err := s.cookies.Load()
	if err == nil {
		return
	}
	if s.source == nil {
		log.WithError(err).Warn("No cookie file loaded")
		return
	}
	if err := s.cookies.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial cookie refresh failed")
	}
}
