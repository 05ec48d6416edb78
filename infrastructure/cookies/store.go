package cookies

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/filesystem"

	"github.com/metafates/gache"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Source fetches the raw cookie export from wherever it is provisioned
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// artifact records when the export at the cookie path was fetched from the source
type artifact struct {
	Raw       []byte    `json:"raw"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store owns the current credential snapshot. Readers get the snapshot
// through Current; only Load and Refresh replace it.
type Store struct {
	fs       afero.Fs
	path     string
	source   Source
	artifact *gache.Cache[*artifact]
	current  atomic.Pointer[Snapshot]
	stale    chan struct{}
	maxAge   time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
	mu       sync.Mutex
}

// StoreOption is a functional option for configuring Store
type StoreOption func(*Store)

// WithSource sets where Refresh pulls cookies from
func WithSource(src Source) StoreOption {
	return func(s *Store) {
		s.source = src
	}
}

// WithMaxAge sets how long a snapshot is trusted before it counts as expired
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *Store) {
		s.maxAge = d
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// WithClock sets a custom clock (for testing)
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// CachePath returns where the fetch record for the export at path is kept
func CachePath(path string) string {
	return path + ".cache"
}

// NewStore creates a store reading the cookie export at path on fs.
// Fetch records live next to it, at CachePath(path).
func NewStore(fs afero.Fs, path string, opts ...StoreOption) *Store {
	s := &Store{
		fs:   fs,
		path: path,
		artifact: gache.New[*artifact](&gache.Options{
			Path:       CachePath(path),
			FileSystem: &filesystem.GacheFs{Fs: fs},
		}),
		stale: make(chan struct{}, 1),
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Current returns the active snapshot. An expired snapshot is still returned,
// and a refresh is requested in the background.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: cookie file not found", video.ErrConfiguration)
	}
	if snap.Expired(s.now(), s.maxAge) {
		s.Invalidate()
	}
	return snap, nil
}

// Invalidate signals that the current snapshot was rejected or has expired
func (s *Store) Invalidate() {
	select {
	case s.stale <- struct{}{}:
	default:
	}
}

// Load reads the cookie export at the store's path, whether it was written by
// Refresh or placed there by hand. The file itself is never modified.
func (s *Store) Load() error {
	raw, fetchedAt, err := s.readArtifact()
	if err != nil {
		return err
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	s.current.Store(NewSnapshot(parsed, fetchedAt))
	s.log.WithField("cookies", len(parsed)).Info("Loaded cookie file")
	return nil
}

// readArtifact returns the export and when it was fetched. The modification
// time stands in for the fetch time unless the cache recorded this exact export.
func (s *Store) readArtifact() ([]byte, time.Time, error) {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: cookie file not found", video.ErrConfiguration)
	}
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: read cookie file: %v", video.ErrConfiguration, err)
	}

	if cached, _, err := s.artifact.Get(); err == nil && cached != nil && bytes.Equal(cached.Raw, raw) {
		return raw, cached.FetchedAt, nil
	}
	return raw, info.ModTime(), nil
}

// Refresh pulls a new export from the source, persists it and swaps it in.
// The previous snapshot stays active if anything fails.
func (s *Store) Refresh(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("%w: no cookie source configured", video.ErrConfiguration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cookie file: %w", err)
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	fetchedAt := s.now()
	if err := filesystem.WriteAtomic(s.fs, s.path, func(w io.Writer) error {
		_, err := w.Write(raw)
		return err
	}); err != nil {
		// the in-memory snapshot is still usable
		s.log.WithError(err).Warn("Failed to persist cookie file")
	} else if err := s.artifact.Set(&artifact{Raw: raw, FetchedAt: fetchedAt}); err != nil {
		s.log.WithError(err).Warn("Failed to record cookie fetch time")
	}

	s.current.Store(NewSnapshot(parsed, fetchedAt))
	s.log.WithField("cookies", len(parsed)).Info("Refreshed cookie file")
	return nil
}

// minRefreshGap limits how often stale signals may trigger a refresh
const minRefreshGap = 30 * time.Second

// Run refreshes on every tick of interval and whenever Invalidate is called,
// until ctx is done. It returns immediately when no source is configured.
// A non-positive interval disables the ticker; invalidations still refresh.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.source == nil {
		return
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	} else {
		s.log.WithField("interval", interval).Warn("Periodic cookie refresh disabled")
	}

	var lastAttempt time.Time
	refresh := func() {
		lastAttempt = s.now()
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.log.WithError(err).Warn("Cookie refresh failed")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			refresh()
		case <-s.stale:
			if s.now().Sub(lastAttempt) < minRefreshGap {
				continue
			}
			s.log.Debug("Cookie file marked stale")
			refresh()
		}
	}
}
