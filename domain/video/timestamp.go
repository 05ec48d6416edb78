package video

import (
	"fmt"
	"regexp"
	"strconv"
)

// Timestamp represents an offset into a video in HH:MM:SS form
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// timestampRegex matches HH:MM:SS format
var timestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// offsetRegex matches plain seconds, MM:SS and HH:MM:SS with unpadded fields
var offsetRegex = regexp.MustCompile(`^(?:(?:(\d+):)?(\d{1,2}):)?(\d+)$`)

// ParseTimestamp parses a timestamp string in HH:MM:SS format
func ParseTimestamp(s string) (Timestamp, error) {
	matches := timestampRegex.FindStringSubmatch(s)
	if matches == nil {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp format %q: expected HH:MM:SS", ErrInvalidInput, s)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	return newTimestamp(s, hours, minutes, seconds)
}

// ParseOffset parses "90", "1:30" or "00:01:30" into a Timestamp.
// Plain seconds may exceed 59; colon-separated fields may not.
func ParseOffset(s string) (Timestamp, error) {
	matches := offsetRegex.FindStringSubmatch(s)
	if matches == nil {
		return Timestamp{}, fmt.Errorf("%w: invalid offset %q: expected seconds, MM:SS or HH:MM:SS", ErrInvalidInput, s)
	}

	seconds, err := strconv.Atoi(matches[3])
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: invalid offset %q: %v", ErrInvalidInput, s, err)
	}
	if matches[2] == "" {
		return TimestampFromSeconds(seconds), nil
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	return newTimestamp(s, hours, minutes, seconds)
}

func newTimestamp(s string, hours, minutes, seconds int) (Timestamp, error) {
	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp %q: minutes must be 0-59", ErrInvalidInput, s)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp %q: seconds must be 0-59", ErrInvalidInput, s)
	}

	return Timestamp{
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}, nil
}

// TimestampFromSeconds converts a non-negative number of seconds to a Timestamp
func TimestampFromSeconds(total int) Timestamp {
	if total < 0 {
		total = 0
	}
	return Timestamp{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// IsZero returns true if the timestamp is 00:00:00
func (t Timestamp) IsZero() bool {
	return t.TotalSeconds() == 0
}

// Before returns true if t is before other
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}
