package video

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// audioQualityRank orders the provider's audio quality labels, higher is better
var audioQualityRank = map[string]int{
	"AUDIO_QUALITY_ULTRALOW": 1,
	"AUDIO_QUALITY_LOW":      2,
	"AUDIO_QUALITY_MEDIUM":   3,
	"AUDIO_QUALITY_HIGH":     4,
}

// AudioFormat describes one stream rendition offered by the provider
type AudioFormat struct {
	Itag           int
	MimeType       string
	Bitrate        int
	AverageBitrate int
	AudioQuality   string
	SampleRate     int
	Channels       int
	ContentLength  int64
	// URL is the stream locator
	URL string
}

// AudioOnly reports whether the format carries an audio track and no video track
func (f AudioFormat) AudioOnly() bool {
	return strings.HasPrefix(strings.ToLower(f.MimeType), "audio/")
}

// Codec returns the codec named in the mime type, e.g. "opus" for `audio/webm; codecs="opus"`
func (f AudioFormat) Codec() string {
	_, params, found := strings.Cut(f.MimeType, "codecs=")
	if !found {
		return ""
	}
	return strings.Trim(strings.TrimSpace(params), `"`)
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("itag %d (%s, %d bps, %s)", f.Itag, f.MimeType, f.Bitrate, f.AudioQuality)
}

// CompareAudioQuality orders two formats by audio quality tier, then bitrate,
// then sample rate, then channel count. It returns a negative number when a
// ranks below b, zero when they rank equal and a positive number otherwise.
func CompareAudioQuality(a, b AudioFormat) int {
	if c := cmp.Compare(audioQualityRank[a.AudioQuality], audioQualityRank[b.AudioQuality]); c != 0 {
		return c
	}
	if c := cmp.Compare(a.effectiveBitrate(), b.effectiveBitrate()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SampleRate, b.SampleRate); c != 0 {
		return c
	}
	return cmp.Compare(a.Channels, b.Channels)
}

func (f AudioFormat) effectiveBitrate() int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

// SelectBestAudio returns the highest ranked audio-only format
func SelectBestAudio(formats []AudioFormat) (AudioFormat, error) {
	audioOnly := lo.Filter(formats, func(f AudioFormat, _ int) bool {
		return f.AudioOnly()
	})
	if len(audioOnly) == 0 {
		return AudioFormat{}, fmt.Errorf("%w: no audio-only format among %d formats", ErrResolution, len(formats))
	}

	return lo.MaxBy(audioOnly, func(a, b AudioFormat) bool {
		return CompareAudioQuality(a, b) > 0
	}), nil
}
