//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"

	"yt-clipper/domain/video"

	"github.com/cucumber/godog"
)

type segmentContext struct {
	duration int
	segments []video.Segment
	ref      video.VideoReference
	parseErr error
}

// SharedSegmentContext is reset after each scenario
var SharedSegmentContext = &segmentContext{}

func InitializeSegmentScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedSegmentContext = &segmentContext{}
		return c, nil
	})

	ctx.Step(`^a video that is (\d+) seconds long$`, func(d int) error {
		SharedSegmentContext.duration = d
		return nil
	})
	ctx.Step(`^I plan its segments$`, func() error {
		SharedSegmentContext.segments = video.PlanSegments(SharedSegmentContext.duration)
		return nil
	})
	ctx.Step(`^there should be (\d+) segments$`, thereShouldBeSegments)
	ctx.Step(`^segment (\d+) should run from (\d+) to (\d+)$`, segmentShouldRunFromTo)

	ctx.Step(`^I parse the video input "([^"]*)"$`, func(input string) error {
		SharedSegmentContext.ref, SharedSegmentContext.parseErr = video.ParseVideoInput(input)
		return nil
	})
	ctx.Step(`^the video ID should be "([^"]*)"$`, theVideoIDShouldBe)
	ctx.Step(`^I should receive an invalid input error$`, iShouldReceiveAnInvalidInputError)
}

func thereShouldBeSegments(n int) error {
	if got := len(SharedSegmentContext.segments); got != n {
		return fmt.Errorf("expected %d segments, got %d: %v", n, got, SharedSegmentContext.segments)
	}
	return nil
}

func segmentShouldRunFromTo(index, start, end int) error {
	segments := SharedSegmentContext.segments
	if index < 1 || index > len(segments) {
		return fmt.Errorf("segment %d does not exist (have %d)", index, len(segments))
	}
	want := video.Segment{Start: start, End: end}
	if got := segments[index-1]; got != want {
		return fmt.Errorf("expected segment %d to be %v, got %v", index, want, got)
	}
	return nil
}

func theVideoIDShouldBe(expected string) error {
	if SharedSegmentContext.parseErr != nil {
		return fmt.Errorf("unexpected error: %w", SharedSegmentContext.parseErr)
	}
	if SharedSegmentContext.ref.ID != expected {
		return fmt.Errorf("expected video ID %q, got %q", expected, SharedSegmentContext.ref.ID)
	}
	return nil
}

func iShouldReceiveAnInvalidInputError() error {
	if SharedSegmentContext.parseErr == nil {
		return fmt.Errorf("expected an error but parsed %q", SharedSegmentContext.ref.ID)
	}
	if !errors.Is(SharedSegmentContext.parseErr, video.ErrInvalidInput) {
		return fmt.Errorf("expected invalid input error, got %v", SharedSegmentContext.parseErr)
	}
	return nil
}
