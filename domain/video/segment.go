package video

import "fmt"

// SegmentWidth is the width in seconds of auto-generated playback segments
const SegmentWidth = 30

// Segment is a [Start, End) window of the source audio in seconds
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the length of the segment in seconds
func (s Segment) Width() int {
	return s.End - s.Start
}

// Validate checks that the segment is a non-empty window inside [0, duration]
func (s Segment) Validate(duration int) error {
	if s.Start < 0 {
		return fmt.Errorf("%w: start %d must not be negative", ErrInvalidInput, s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("%w: end %d must be after start %d", ErrInvalidInput, s.End, s.Start)
	}
	if s.End > duration {
		return fmt.Errorf("%w: end %d exceeds duration %d", ErrInvalidInput, s.End, duration)
	}
	return nil
}

func (s Segment) String() string {
	return fmt.Sprintf("%s-%s", TimestampFromSeconds(s.Start), TimestampFromSeconds(s.End))
}

// PlanSegments partitions duration into contiguous SegmentWidth windows.
// The last window is truncated to duration. The result is advisory only.
func PlanSegments(duration int) []Segment {
	if duration < 0 {
		duration = 0
	}
	if duration <= SegmentWidth {
		return []Segment{{Start: 0, End: duration}}
	}

	count := (duration + SegmentWidth - 1) / SegmentWidth
	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		segments = append(segments, Segment{
			Start: i * SegmentWidth,
			End:   min((i+1)*SegmentWidth, duration),
		})
	}
	return segments
}
