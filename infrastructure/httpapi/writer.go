package httpapi

import (
	"errors"
	"net/http"
)

// committingWriter defers the response headers until the first byte of output,
// so failures before that can still be reported as JSON errors. Every write is
// flushed to the client.
type committingWriter struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	header    func(http.Header)
	committed bool
	written   int64
}

func newCommittingWriter(w http.ResponseWriter, header func(http.Header)) *committingWriter {
	return &committingWriter{
		w:      w,
		rc:     http.NewResponseController(w),
		header: header,
	}
}

func (c *committingWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !c.committed {
		c.header(c.w.Header())
		c.w.WriteHeader(http.StatusOK)
		c.committed = true
	}

	n, err := c.w.Write(p)
	c.written += int64(n)
	if err != nil {
		return n, err
	}
	if err := c.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}

// Committed reports whether headers have been sent
func (c *committingWriter) Committed() bool {
	return c.committed
}

// Written returns the number of body bytes sent
func (c *committingWriter) Written() int64 {
	return c.written
}
