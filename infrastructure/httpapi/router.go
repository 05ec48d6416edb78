// Package httpapi exposes the clipper over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"yt-clipper/application/clip"
	"yt-clipper/domain/video"

	"github.com/sirupsen/logrus"
)

// Error bodies returned to clients
const (
	msgMissingVideoID   = "Missing video ID"
	msgInvalidWindow    = "Invalid time window"
	msgVideoInfoFailed  = "Error processing video"
	msgDownloadFailed   = "Error processing video for download"
	msgCookieFileAbsent = "Cookie file not found"
)

// MetadataProvider looks up video metadata
type MetadataProvider interface {
	VideoInfo(ctx context.Context, id string) (*clip.VideoInfo, error)
}

// ClipExtractor prepares and streams audio clips
type ClipExtractor interface {
	Prepare(ctx context.Context, req *video.ClipRequest) (*clip.Clip, error)
	Stream(ctx context.Context, c *clip.Clip, dst io.Writer) error
}

// CookieRefresher pulls a fresh credential artifact
type CookieRefresher interface {
	Refresh(ctx context.Context) error
}

type API struct {
	metadata MetadataProvider
	clips    ClipExtractor
	cookies  CookieRefresher
	log      logrus.FieldLogger
}

// New builds the HTTP handler. cookies may be nil when no credential source is configured.
func New(metadata MetadataProvider, clips ClipExtractor, cookies CookieRefresher, log logrus.FieldLogger) http.Handler {
	api := &API{
		metadata: metadata,
		clips:    clips,
		cookies:  cookies,
		log:      log,
	}

	mux := http.NewServeMux()

	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc("GET "+prefix+"/video-info", api.handleVideoInfo)
		mux.HandleFunc("GET "+prefix+"/download-audio", api.handleDownloadAudio)
		mux.HandleFunc("GET "+prefix+"/download-cookie", api.handleDownloadCookie)
	}
	mux.HandleFunc("GET /healthz", api.handleHealth)

	return chain(mux, requestID, accessLog(log), recoverer)
}

func (a *API) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("videoId")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, msgMissingVideoID)
		return
	}

	log := loggerFrom(r.Context()).WithField("video_id", videoID)

	info, err := a.metadata.VideoInfo(r.Context(), videoID)
	if err != nil {
		log.WithError(err).Error("Video info failed")
		if errors.Is(err, video.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgMissingVideoID)
			return
		}
		writeError(w, http.StatusInternalServerError, msgVideoInfoFailed)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (a *API) handleDownloadAudio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videoID := q.Get("videoId")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, msgMissingVideoID)
		return
	}

	start, errStart := intParam(q.Get("start"), video.DefaultClipStart)
	end, errEnd := intParam(q.Get("end"), video.DefaultClipEnd)
	if errStart != nil || errEnd != nil {
		writeError(w, http.StatusBadRequest, msgInvalidWindow)
		return
	}

	log := loggerFrom(r.Context()).WithFields(logrus.Fields{
		"video_id": videoID,
		"start":    start,
		"end":      end,
	})

	req, err := video.NewClipRequest(videoID, start, end)
	if err != nil {
		log.WithError(err).Info("Rejected clip request")
		writeError(w, http.StatusBadRequest, msgInvalidWindow)
		return
	}

	c, err := a.clips.Prepare(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("Clip preparation failed")
		writeDownloadError(w, err)
		return
	}

	out := newCommittingWriter(w, func(h http.Header) {
		h.Set("Content-Type", "audio/mpeg")
		h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.Filename))
		h.Set("Cache-Control", "no-store")
	})

	err = a.clips.Stream(r.Context(), c, out)
	switch {
	case err == nil && !out.Committed():
		// encoder produced nothing
		log.Error("Clip produced no audio")
		writeError(w, http.StatusInternalServerError, msgDownloadFailed)
	case err == nil:
	case r.Context().Err() != nil:
		log.WithError(err).Info("Client went away")
	case !out.Committed():
		log.WithError(err).Error("Clip failed before output")
		writeDownloadError(w, err)
	default:
		log.WithError(err).WithField("bytes", out.Written()).Error("Clip failed mid-stream")
		// abort so the client sees a truncated transfer instead of a complete file
		panic(http.ErrAbortHandler)
	}
}

func (a *API) handleDownloadCookie(w http.ResponseWriter, r *http.Request) {
	if a.cookies == nil {
		loggerFrom(r.Context()).Warn("No cookie source configured")
		writeJSON(w, http.StatusOK, false)
		return
	}

	if err := a.cookies.Refresh(r.Context()); err != nil {
		loggerFrom(r.Context()).WithError(err).Error("Cookie refresh failed")
		writeJSON(w, http.StatusOK, false)
		return
	}

	writeJSON(w, http.StatusOK, true)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeDownloadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, video.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidWindow)
	case errors.Is(err, video.ErrConfiguration):
		writeError(w, http.StatusInternalServerError, msgCookieFileAbsent)
	default:
		writeError(w, http.StatusInternalServerError, msgDownloadFailed)
	}
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
