package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// Snapshot is an immutable set of session cookies. It is shared read-only by
// concurrent requests; each request gets its own jar from NewJar.
type Snapshot struct {
	cookies   []Cookie
	FetchedAt time.Time
	// ExpiresAt is the earliest persistent cookie expiry, zero if none expire
	ExpiresAt time.Time
}

// NewSnapshot builds a snapshot and records the earliest cookie expiry
func NewSnapshot(cookies []Cookie, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{cookies: cookies, FetchedAt: fetchedAt}
	for _, c := range cookies {
		if c.Expires.IsZero() {
			continue
		}
		if s.ExpiresAt.IsZero() || c.Expires.Before(s.ExpiresAt) {
			s.ExpiresAt = c.Expires
		}
	}
	return s
}

// Len returns the number of cookies in the snapshot
func (s *Snapshot) Len() int {
	return len(s.cookies)
}

// Expired reports whether the snapshot is older than maxAge or holds an expired cookie
func (s *Snapshot) Expired(now time.Time, maxAge time.Duration) bool {
	if maxAge > 0 && now.Sub(s.FetchedAt) > maxAge {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// NewJar returns a fresh cookie jar seeded with the snapshot's cookies.
// Cookies set by upstream responses land in that jar only.
func (s *Snapshot) NewJar() http.CookieJar {
	jar, _ := cookiejar.New(nil)

	byHost := make(map[string][]*http.Cookie)
	for _, c := range s.cookies {
		copied := c.Cookie
		byHost[c.Host] = append(byHost[c.Host], &copied)
	}
	for host, cookies := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, cookies)
	}
	return jar
}
