package blob

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yt-clipper/domain/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPSource(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantURL string
		wantErr bool
	}{
		{
			name:    "adds download flag",
			url:     "https://store.example.com/cookies.json",
			wantURL: "https://store.example.com/cookies.json?download=1",
		},
		{
			name:    "keeps existing query",
			url:     "https://store.example.com/cookies.json?v=2",
			wantURL: "https://store.example.com/cookies.json?download=1&v=2",
		},
		{
			name:    "empty url",
			url:     "",
			wantErr: true,
		},
		{
			name:    "relative url",
			url:     "cookies.json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewHTTPSource(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, video.ErrConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, src.url)
		})
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	t.Run("downloads with bearer token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("download"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Write([]byte(`[{"name":"SID"}]`))
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL+"/cookies.json", WithToken("secret"), WithHTTPClient(server.Client()))
		require.NoError(t, err)

		data, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `[{"name":"SID"}]`, string(data))
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL, WithHTTPClient(server.Client()))
		require.NoError(t, err)

		_, err = src.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("oversized blob", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", maxArtifactSize+10)))
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL, WithHTTPClient(server.Client()))
		require.NoError(t, err)

		_, err = src.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}
