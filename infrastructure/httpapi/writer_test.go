package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommittingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	headerCalls := 0
	w := newCommittingWriter(rec, func(h http.Header) {
		headerCalls++
		h.Set("Content-Type", "audio/mpeg")
	})

	assert.False(t, w.Committed())

	n, err := w.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, w.Committed(), "empty writes must not commit")

	_, err = w.Write([]byte("ID3"))
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)

	assert.True(t, w.Committed())
	assert.Equal(t, 1, headerCalls)
	assert.Equal(t, int64(7), w.Written())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)
	assert.Equal(t, "ID3data", rec.Body.String())
}
