package clip

import (
	"context"
	"time"

	"yt-clipper/domain/video"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CachingResolver decorates a Resolver with a bounded TTL cache keyed by video id.
// Concurrent misses for the same id share one upstream call, which is not
// cancelled when the first caller goes away.
type CachingResolver struct {
	next   video.Resolver
	cache  *expirable.LRU[string, *video.Source]
	flight singleflight.Group
	log    logrus.FieldLogger
}

// NewCachingResolver wraps next. A non-positive ttl or size returns next unchanged.
func NewCachingResolver(next video.Resolver, size int, ttl time.Duration, log logrus.FieldLogger) video.Resolver {
	if size <= 0 || ttl <= 0 {
		return next
	}
	return &CachingResolver{
		next:  next,
		cache: expirable.NewLRU[string, *video.Source](size, nil, ttl),
		log:   log,
	}
}

// Resolve implements video.Resolver
func (c *CachingResolver) Resolve(ctx context.Context, ref video.VideoReference) (*video.Source, error) {
	if src, ok := c.cache.Get(ref.ID); ok {
		c.log.WithField("video_id", ref.ID).Debug("Resolve cache hit")
		return src, nil
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(ref.ID, func() (interface{}, error) {
		src, err := c.next.Resolve(shared, ref)
		if err != nil {
			return nil, err
		}
		c.cache.Add(ref.ID, src)
		return src, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*video.Source), nil
}

// Len returns the number of cached entries
func (c *CachingResolver) Len() int {
	return c.cache.Len()
}

// Ensure CachingResolver implements video.Resolver
var _ video.Resolver = (*CachingResolver)(nil)
