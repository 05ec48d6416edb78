//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"yt-clipper/application/clip"
	"yt-clipper/infrastructure/httpapi"
	"yt-clipper/infrastructure/logging"

	"github.com/cucumber/godog"
)

type apiContext struct {
	response *httptest.ResponseRecorder
}

// SharedAPIContext is reset after each scenario
var SharedAPIContext = &apiContext{}

// InitializeAPIScenario shares the video fixtures of the clip scenarios
func InitializeAPIScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedAPIContext = &apiContext{}
		return c, nil
	})

	ctx.Step(`^the cookie file is missing$`, func() error {
		getClipContext().resolver.missingCookie = true
		return nil
	})
	ctx.Step(`^I request "([^"]*)"$`, iRequest)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, theJSONFieldShouldBe)
	ctx.Step(`^the JSON response should list (\d+) segments$`, theJSONResponseShouldListSegments)
	ctx.Step(`^the header "([^"]*)" should be "(.*)"$`, theHeaderShouldBe)
	ctx.Step(`^the response body should be "([^"]*)"$`, theResponseBodyShouldBe)
}

func iRequest(target string) error {
	c := getClipContext()
	handler := httpapi.New(
		clip.NewMetadataService(c.resolver),
		c.extractService(),
		nil,
		logging.Discard(),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	SharedAPIContext.response = rec
	return nil
}

func theResponseStatusShouldBe(status int) error {
	if got := SharedAPIContext.response.Code; got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, SharedAPIContext.response.Body.String())
	}
	return nil
}

func decodeResponse() (map[string]any, error) {
	var body map[string]any
	if err := json.Unmarshal(SharedAPIContext.response.Body.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return body, nil
}

func theJSONFieldShouldBe(field, expected string) error {
	body, err := decodeResponse()
	if err != nil {
		return err
	}
	if got := fmt.Sprint(body[field]); got != expected {
		return fmt.Errorf("expected %s %q, got %q", field, expected, got)
	}
	return nil
}

func theJSONResponseShouldListSegments(n int) error {
	body, err := decodeResponse()
	if err != nil {
		return err
	}
	segments, ok := body["segments"].([]any)
	if !ok {
		return fmt.Errorf("response has no segments array: %v", body)
	}
	if len(segments) != n {
		return fmt.Errorf("expected %d segments, got %d", n, len(segments))
	}
	return nil
}

func theHeaderShouldBe(name, expected string) error {
	expected = strings.ReplaceAll(expected, `\"`, `"`)
	if got := SharedAPIContext.response.Header().Get(name); got != expected {
		return fmt.Errorf("expected header %s %q, got %q", name, expected, got)
	}
	return nil
}

func theResponseBodyShouldBe(expected string) error {
	if got := strings.TrimSpace(SharedAPIContext.response.Body.String()); got != expected {
		return fmt.Errorf("expected body %q, got %q", expected, got)
	}
	return nil
}
