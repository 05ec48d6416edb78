package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"yt-clipper/domain/video"
)

// Encoder implements video.Encoder by piping the source through ffmpeg
type Encoder struct {
	ffmpegPath string
	bitrate    string
	runner     CommandRunner
}

// EncoderOption is a functional option for configuring Encoder
type EncoderOption func(*Encoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EncoderOption {
	return func(e *Encoder) {
		e.ffmpegPath = path
	}
}

// WithBitrate sets the MP3 bitrate, e.g. "192k"
func WithBitrate(bitrate string) EncoderOption {
	return func(e *Encoder) {
		e.bitrate = bitrate
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EncoderOption {
	return func(e *Encoder) {
		e.runner = runner
	}
}

// NewEncoder creates a new FFmpeg-based MP3 encoder
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		ffmpegPath: "ffmpeg",
		bitrate:    "192k",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Encode implements video.Encoder
func (e *Encoder) Encode(ctx context.Context, src io.Reader, dst io.Writer, job video.EncodeJob) error {
	if job.Window.Width() <= 0 {
		return fmt.Errorf("%w: empty window %s", video.ErrInvalidInput, job.Window)
	}

	if err := e.runner.Pipe(ctx, src, dst, e.ffmpegPath, e.args(job)...); err != nil {
		return fmt.Errorf("%w: ffmpeg encode failed: %w", video.ErrExtraction, err)
	}

	return nil
}

func (e *Encoder) args(job video.EncodeJob) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-ss", video.TimestampFromSeconds(job.Window.Start).String(),
		"-t", strconv.Itoa(job.Window.Width()),
		"-vn",                 // No video
		"-map_metadata", "-1", // Drop container tags from the source
	}
	if job.Title != "" {
		args = append(args, "-metadata", "title="+job.Title)
	}
	if job.Artist != "" {
		args = append(args, "-metadata", "artist="+job.Artist)
	}
	return append(args,
		"-id3v2_version", "3",
		"-acodec", "libmp3lame", // MP3 codec
		"-b:a", e.bitrate,
		"-f", "mp3",
		"pipe:1",
	)
}

// VerifyInstalled checks that ffmpeg is available
func (e *Encoder) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("%w: ffmpeg not found or not executable: %v", video.ErrConfiguration, err)
	}
	return nil
}

// Ensure Encoder implements video.Encoder
var _ video.Encoder = (*Encoder)(nil)
