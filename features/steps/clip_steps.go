//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"yt-clipper/application/clip"
	"yt-clipper/cmd"
	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/logging"

	"github.com/cucumber/godog"
	"github.com/spf13/afero"
)

// clipContext holds test state for clip and API scenarios
type clipContext struct {
	resolver *fakeResolver
	opener   *fakeOpener
	encoder  *fakeEncoder
	fs       afero.Fs
	status   *bytes.Buffer
	err      error
}

// SharedClipContext is reset before each scenario via Before hook
var SharedClipContext *clipContext

func getClipContext() *clipContext {
	return SharedClipContext
}

func (c *clipContext) extractService() *clip.ExtractService {
	return clip.NewExtractService(c.resolver, c.opener, c.encoder, clip.WithLogger(logging.Discard()))
}

func InitializeClipScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedClipContext = &clipContext{
			resolver: newFakeResolver(),
			opener:   &fakeOpener{},
			encoder:  &fakeEncoder{},
			fs:       afero.NewMemMapFs(),
			status:   &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedClipContext = nil
		return c, nil
	})

	ctx.Step(`^a video "([^"]*)" titled "([^"]*)" lasting (\d+) seconds$`, aVideoTitledLasting)
	ctx.Step(`^a file already exists at "([^"]*)"$`, aFileAlreadyExistsAt)
	ctx.Step(`^I clip "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iClipFromTo)
	ctx.Step(`^I clip "([^"]*)" from "([^"]*)" to "([^"]*)" into "([^"]*)"$`, iClipFromToInto)
	ctx.Step(`^I attempt to clip "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iAttemptToClipFromTo)
	ctx.Step(`^I attempt to clip "([^"]*)" from "([^"]*)" to "([^"]*)" into "([^"]*)"$`, iAttemptToClipFromToInto)
	ctx.Step(`^the clip should be written to "([^"]*)"$`, theClipShouldBeWrittenTo)
	ctx.Step(`^the encoder should have trimmed (\d+) to (\d+)$`, theEncoderShouldHaveTrimmed)
	ctx.Step(`^I should receive an error containing "([^"]*)"$`, iShouldReceiveAnErrorContaining)
	ctx.Step(`^no stream should have been opened$`, noStreamShouldHaveBeenOpened)
}

func aVideoTitledLasting(id, title string, duration int) error {
	getClipContext().resolver.add(id, title, duration)
	return nil
}

func aFileAlreadyExistsAt(path string) error {
	return afero.WriteFile(getClipContext().fs, path, []byte("keep me"), 0644)
}

func runClip(input cmd.ClipInput) error {
	c := getClipContext()
	return cmd.RunClipWithDependencies(context.Background(), c.extractService(), c.fs, input, &bytes.Buffer{}, c.status)
}

func iClipFromTo(id, start, end string) error {
	return iClipFromToInto(id, start, end, "")
}

func iClipFromToInto(id, start, end, output string) error {
	if err := runClip(cmd.ClipInput{Video: id, Start: start, End: end, Output: output}); err != nil {
		return fmt.Errorf("clip failed: %w", err)
	}
	return nil
}

func iAttemptToClipFromTo(id, start, end string) error {
	return iAttemptToClipFromToInto(id, start, end, "")
}

func iAttemptToClipFromToInto(id, start, end, output string) error {
	getClipContext().err = runClip(cmd.ClipInput{Video: id, Start: start, End: end, Output: output})
	return nil
}

func theClipShouldBeWrittenTo(path string) error {
	data, err := afero.ReadFile(getClipContext().fs, path)
	if err != nil {
		return fmt.Errorf("expected clip at %s: %w", path, err)
	}
	if !strings.HasPrefix(string(data), "ID3") {
		return fmt.Errorf("expected MP3 output at %s, got %q", path, data)
	}
	return nil
}

func theEncoderShouldHaveTrimmed(start, end int) error {
	jobs := getClipContext().encoder.jobs
	if len(jobs) != 1 {
		return fmt.Errorf("expected 1 encode job, got %d", len(jobs))
	}
	want := video.Segment{Start: start, End: end}
	if jobs[0].Window != want {
		return fmt.Errorf("expected window %v, got %v", want, jobs[0].Window)
	}
	return nil
}

func iShouldReceiveAnErrorContaining(substr string) error {
	err := getClipContext().err
	if err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(err.Error(), substr) {
		return fmt.Errorf("expected error containing %q, got %q", substr, err.Error())
	}
	return nil
}

func noStreamShouldHaveBeenOpened() error {
	if n := len(getClipContext().opener.opened); n != 0 {
		return fmt.Errorf("expected no stream to be opened, got %d", n)
	}
	return nil
}
