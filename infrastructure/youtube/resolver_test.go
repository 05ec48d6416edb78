package youtube

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/cookies"
	"yt-clipper/infrastructure/logging"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideoService struct {
	video     *youtube.Video
	videoErr  error
	streamErr error
	gotID     string
	gotItag   int
	client    *http.Client
}

func (f *fakeVideoService) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	f.gotID = id
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.video, nil
}

func (f *fakeVideoService) GetStreamURLContext(ctx context.Context, v *youtube.Video, format *youtube.Format) (string, error) {
	f.gotItag = format.ItagNo
	if f.streamErr != nil {
		return "", f.streamErr
	}
	return "https://rr1.googlevideo.com/videoplayback?itag=" + strconv.Itoa(format.ItagNo), nil
}

type fakeCredentials struct {
	snapshot    *cookies.Snapshot
	err         error
	invalidated int
}

func (f *fakeCredentials) Current() (*cookies.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeCredentials) Invalidate() {
	f.invalidated++
}

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Author:   "Rick Astley",
		Duration: 212*time.Second + 400*time.Millisecond,
		Formats: youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioQuality: "AUDIO_QUALITY_LOW"},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AverageBitrate: 129000, AudioQuality: "AUDIO_QUALITY_MEDIUM", AudioSampleRate: "44100", AudioChannels: 2},
			{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 140000, AverageBitrate: 135000, AudioQuality: "AUDIO_QUALITY_MEDIUM", AudioSampleRate: "48000", AudioChannels: 2},
			{ItagNo: 249, MimeType: `audio/webm; codecs="opus"`, Bitrate: 60000, AudioQuality: "AUDIO_QUALITY_LOW", AudioSampleRate: "48000", AudioChannels: 2},
		},
	}
}

func testSnapshot(t *testing.T) *cookies.Snapshot {
	t.Helper()
	parsed, err := cookies.Parse([]byte(`[{"name":"SID","value":"abc","domain":".youtube.com","path":"/"}]`))
	require.NoError(t, err)
	return cookies.NewSnapshot(parsed, time.Now())
}

func newTestResolver(svc *fakeVideoService, opts ...ResolverOption) *Resolver {
	opts = append([]ResolverOption{
		WithLogger(logging.Discard()),
		WithServiceFactory(func(client *http.Client) VideoService {
			svc.client = client
			return svc
		}),
	}, opts...)
	return NewResolver(opts...)
}

func TestResolver_Resolve(t *testing.T) {
	ref, err := video.NewVideoReference("dQw4w9WgXcQ")
	require.NoError(t, err)

	t.Run("selects highest quality audio-only format", func(t *testing.T) {
		svc := &fakeVideoService{video: testVideo()}
		creds := &fakeCredentials{snapshot: testSnapshot(t)}
		resolver := newTestResolver(svc, WithCredentials(creds, true))

		src, err := resolver.Resolve(context.Background(), ref)
		require.NoError(t, err)

		assert.Equal(t, "dQw4w9WgXcQ", svc.gotID)
		assert.Equal(t, 251, svc.gotItag)
		assert.Equal(t, 251, src.Stream.Itag)
		assert.Equal(t, 48000, src.Stream.SampleRate)
		assert.Contains(t, src.Stream.URL, "googlevideo.com")
		assert.Equal(t, "Never Gonna Give You Up", src.Title)
		assert.Equal(t, "Rick Astley", src.Author)
		assert.Equal(t, 212, src.Duration)
		assert.Equal(t, ref, src.Reference)

		require.NotNil(t, svc.client.Jar, "expected cookie jar on upstream client")
	})

	t.Run("missing required credentials", func(t *testing.T) {
		svc := &fakeVideoService{video: testVideo()}
		creds := &fakeCredentials{err: errors.Join(video.ErrConfiguration, errors.New("cookie file not found"))}
		resolver := newTestResolver(svc, WithCredentials(creds, true))

		_, err := resolver.Resolve(context.Background(), ref)
		require.Error(t, err)
		assert.ErrorIs(t, err, video.ErrConfiguration)
		assert.Empty(t, svc.gotID, "upstream must not be called")
	})

	t.Run("optional credentials missing", func(t *testing.T) {
		svc := &fakeVideoService{video: testVideo()}
		creds := &fakeCredentials{err: video.ErrConfiguration}
		resolver := newTestResolver(svc, WithCredentials(creds, false))

		_, err := resolver.Resolve(context.Background(), ref)
		require.NoError(t, err)
		assert.Nil(t, svc.client.Jar)
	})

	t.Run("no audio-only format", func(t *testing.T) {
		v := testVideo()
		v.Formats = v.Formats[:1]
		svc := &fakeVideoService{video: v}
		resolver := newTestResolver(svc)

		_, err := resolver.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, video.ErrResolution)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := &fakeVideoService{videoErr: errors.New("video unavailable")}
		creds := &fakeCredentials{snapshot: testSnapshot(t)}
		resolver := newTestResolver(svc, WithCredentials(creds, true))

		_, err := resolver.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, video.ErrResolution)
		assert.Contains(t, err.Error(), "video unavailable")
		assert.Equal(t, 0, creds.invalidated)
	})

	t.Run("session rejected invalidates credentials", func(t *testing.T) {
		svc := &fakeVideoService{videoErr: youtube.ErrUnexpectedStatusCode(http.StatusForbidden)}
		creds := &fakeCredentials{snapshot: testSnapshot(t)}
		resolver := newTestResolver(svc, WithCredentials(creds, true))

		_, err := resolver.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, video.ErrResolution)
		assert.Equal(t, 1, creds.invalidated)
	})

	t.Run("stream url failure", func(t *testing.T) {
		svc := &fakeVideoService{video: testVideo(), streamErr: errors.New("cipher not found")}
		resolver := newTestResolver(svc)

		_, err := resolver.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, video.ErrResolution)
		assert.Contains(t, err.Error(), "resolve stream url")
	})

	t.Run("cancelled while throttled", func(t *testing.T) {
		svc := &fakeVideoService{video: testVideo()}
		resolver := newTestResolver(svc, WithRateLimit(0.001, 1))

		_, err := resolver.Resolve(context.Background(), ref)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = resolver.Resolve(ctx, ref)
		assert.ErrorIs(t, err, video.ErrResolution)
	})
}

func TestIsRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "forbidden", err: youtube.ErrUnexpectedStatusCode(http.StatusForbidden), want: true},
		{name: "unauthorized", err: youtube.ErrUnexpectedStatusCode(http.StatusUnauthorized), want: true},
		{name: "not found", err: youtube.ErrUnexpectedStatusCode(http.StatusNotFound), want: false},
		{name: "bot check", err: errors.New("LOGIN_REQUIRED: Sign in to confirm you're not a bot"), want: true},
		{name: "other", err: errors.New("video unavailable"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRejected(tt.err))
		})
	}
}
