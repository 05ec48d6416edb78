package video

import (
	"context"
	"io"
)

// Source is the result of resolving a video: its metadata plus the selected
// audio-only stream. It is obtained per request and never mutated.
type Source struct {
	Reference VideoReference
	Title     string
	Author    string
	// Duration is the total length in whole seconds
	Duration int
	Stream   AudioFormat
}

// Segments returns the advisory playback segments for the source
func (s *Source) Segments() []Segment {
	return PlanSegments(s.Duration)
}

// Resolver turns a video reference into a concrete, fetchable audio stream.
// This is a port that can be implemented by different infrastructure adapters
type Resolver interface {
	Resolve(ctx context.Context, ref VideoReference) (*Source, error)
}

// StreamOpener opens a forward-only reader over a remote audio stream
type StreamOpener interface {
	Open(ctx context.Context, stream AudioFormat) (io.ReadCloser, error)
}

// EncodeJob describes one trim-and-encode pass
type EncodeJob struct {
	Window Segment
	Title  string
	Artist string
}

// Encoder trims src to the job window and writes MP3 audio to dst as it is produced.
// It must consume src in order and stop after Window.Width() seconds of output.
type Encoder interface {
	Encode(ctx context.Context, src io.Reader, dst io.Writer, job EncodeJob) error
}
