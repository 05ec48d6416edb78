package cookies

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/logging"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

const exportJSON = `[
  {"name": "SID", "value": "sid-value", "domain": ".youtube.com", "path": "/", "expirationDate": 1893456000.5, "secure": true, "httpOnly": true},
  {"name": "PREF", "value": "f6=40000000", "domain": "www.youtube.com", "path": "/", "hostOnly": true},
  {"name": "", "value": "skipped", "domain": ".youtube.com"}
]`

type fakeSource struct {
	data  []byte
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should read a browser cookie export", func() {
			parsed, err := Parse([]byte(exportJSON))
			So(err, ShouldBeNil)
			So(parsed, ShouldHaveLength, 2)

			So(parsed[0].Name, ShouldEqual, "SID")
			So(parsed[0].Host, ShouldEqual, "youtube.com")
			So(parsed[0].Secure, ShouldBeTrue)
			So(parsed[0].Expires.Unix(), ShouldEqual, 1893456000)

			So(parsed[1].Domain, ShouldBeEmpty)
			So(parsed[1].Host, ShouldEqual, "www.youtube.com")
			So(parsed[1].Expires.IsZero(), ShouldBeTrue)
		})

		Convey("Should reject malformed JSON as a configuration error", func() {
			_, err := Parse([]byte(`{"not": "a list"}`))
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Should reject an export without cookies", func() {
			_, err := Parse([]byte(`[]`))
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Snapshot", t, func() {
		parsed, err := Parse([]byte(exportJSON))
		So(err, ShouldBeNil)
		fetched := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		snap := NewSnapshot(parsed, fetched)

		Convey("Should track the earliest expiry", func() {
			So(snap.ExpiresAt.Unix(), ShouldEqual, 1893456000)
		})

		Convey("Should expire by age", func() {
			So(snap.Expired(fetched.Add(time.Hour), 2*time.Hour), ShouldBeFalse)
			So(snap.Expired(fetched.Add(3*time.Hour), 2*time.Hour), ShouldBeTrue)
		})

		Convey("Should expire when a cookie expires", func() {
			So(snap.Expired(time.Unix(1893456001, 0), 0), ShouldBeTrue)
		})

		Convey("Should seed independent jars", func() {
			jar := snap.NewJar()
			u, _ := url.Parse("https://www.youtube.com/watch?v=abc123")
			So(jar.Cookies(u), ShouldHaveLength, 2)

			music, _ := url.Parse("https://music.youtube.com/")
			So(jar.Cookies(music), ShouldHaveLength, 1)

			other := snap.NewJar()
			jar.SetCookies(u, []*http.Cookie{{Name: "VISITOR_INFO1_LIVE", Value: "x"}})
			So(jar.Cookies(u), ShouldHaveLength, 3)
			So(other.Cookies(u), ShouldHaveLength, 2)
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Store", t, func() {
		fs := afero.NewMemMapFs()
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		src := &fakeSource{data: []byte(exportJSON)}

		store := NewStore(fs, "/data/cookies.json",
			WithSource(src),
			WithMaxAge(time.Hour),
			WithLogger(logging.Discard()),
			WithClock(clock),
		)

		Convey("Should report missing credentials as a configuration error", func() {
			_, err := store.Current()
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)

			err = store.Load()
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Should refresh from the source", func() {
			So(store.Refresh(context.Background()), ShouldBeNil)

			snap, err := store.Current()
			So(err, ShouldBeNil)
			So(snap.Len(), ShouldEqual, 2)
			So(snap.FetchedAt, ShouldEqual, now)
		})

		Convey("Should persist the artifact for the next process", func() {
			So(store.Refresh(context.Background()), ShouldBeNil)

			reloaded := NewStore(fs, "/data/cookies.json", WithLogger(logging.Discard()), WithClock(clock))
			So(reloaded.Load(), ShouldBeNil)

			snap, err := reloaded.Current()
			So(err, ShouldBeNil)
			So(snap.Len(), ShouldEqual, 2)
		})

		Convey("Should load a raw export placed by hand", func() {
			So(afero.WriteFile(fs, "/data/cookies.json", []byte(exportJSON), 0600), ShouldBeNil)

			So(store.Load(), ShouldBeNil)
			snap, err := store.Current()
			So(err, ShouldBeNil)
			So(snap.Len(), ShouldEqual, 2)

			Convey("And leave the file untouched", func() {
				data, err := afero.ReadFile(fs, "/data/cookies.json")
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, exportJSON)
			})
		})

		Convey("Should write the fetched export to the cookie path", func() {
			So(store.Refresh(context.Background()), ShouldBeNil)

			data, err := afero.ReadFile(fs, "/data/cookies.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, exportJSON)

			exists, _ := afero.Exists(fs, CachePath("/data/cookies.json"))
			So(exists, ShouldBeTrue)
		})

		Convey("Should keep the fetch time recorded by the previous process", func() {
			So(store.Refresh(context.Background()), ShouldBeNil)

			reloaded := NewStore(fs, "/data/cookies.json", WithLogger(logging.Discard()))
			So(reloaded.Load(), ShouldBeNil)

			snap, err := reloaded.Current()
			So(err, ShouldBeNil)
			So(snap.FetchedAt.Equal(now), ShouldBeTrue)
		})

		Convey("Should reject a malformed file placed by hand", func() {
			So(afero.WriteFile(fs, "/data/cookies.json", []byte("not json"), 0600), ShouldBeNil)

			err := store.Load()
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Should keep the previous snapshot when a refresh fails", func() {
			So(store.Refresh(context.Background()), ShouldBeNil)
			before, _ := store.Current()

			src.err = errors.New("blob unavailable")
			So(store.Refresh(context.Background()), ShouldNotBeNil)

			after, err := store.Current()
			So(err, ShouldBeNil)
			So(after, ShouldEqual, before)
		})

		Convey("Should refuse to refresh without a source", func() {
			bare := NewStore(fs, "/data/other.json", WithLogger(logging.Discard()))
			err := bare.Refresh(context.Background())
			So(errors.Is(err, video.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Should not panic on a non-positive refresh interval", func() {
			for _, interval := range []time.Duration{0, -time.Second} {
				ctx, cancel := context.WithCancel(context.Background())
				done := make(chan struct{})
				go func() {
					defer close(done)
					store.Run(ctx, interval)
				}()
				cancel()
				<-done
			}
			So(src.calls.Load(), ShouldEqual, 0)
		})

		Convey("Should refresh in the background when invalidated", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go store.Run(ctx, time.Hour)

			store.Invalidate()

			deadline := time.After(2 * time.Second)
			for src.calls.Load() == 0 {
				select {
				case <-deadline:
					t.Fatal("refresh was not triggered")
				case <-time.After(10 * time.Millisecond):
				}
			}
			So(src.calls.Load(), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
