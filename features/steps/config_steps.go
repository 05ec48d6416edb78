//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"yt-clipper/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	env        map[string]string
	cfg        *config.Config
	loadErr    error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			env:        make(map[string]string),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		for key := range SharedConfigContext.env {
			os.Unsetenv(key)
		}
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, func() error { return nil })
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, theEnvironmentVariableIs)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, iAttemptToLoadTheConfiguration)
	ctx.Step(`^the server address should be "([^"]*)"$`, func(v string) error {
		return expectConfig("server address", v, SharedConfigContext.cfg.Server.Addr)
	})
	ctx.Step(`^the bitrate should be "([^"]*)"$`, func(v string) error {
		return expectConfig("bitrate", v, SharedConfigContext.cfg.Audio.Bitrate)
	})
	ctx.Step(`^the stall timeout should be "([^"]*)"$`, func(v string) error {
		return expectConfig("stall timeout", v, SharedConfigContext.cfg.Audio.StallTimeout.String())
	})
	ctx.Step(`^the cookie blob URL should be "([^"]*)"$`, func(v string) error {
		return expectConfig("blob URL", v, SharedConfigContext.cfg.Cookies.BlobURL)
	})
	ctx.Step(`^the cookie source should be "([^"]*)"$`, func(v string) error {
		return expectConfig("cookie source", v, SharedConfigContext.cfg.Cookies.Source)
	})
	ctx.Step(`^I should receive an error about missing configuration$`, iShouldReceiveAnErrorAboutMissingConfiguration)
}

func aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(SharedConfigContext.configPath, []byte(doc.Content), 0644)
}

func theEnvironmentVariableIs(key, value string) error {
	SharedConfigContext.env[key] = value
	return os.Setenv(key, value)
}

func iLoadTheConfiguration() error {
	cfg, err := config.Load(SharedConfigContext.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	if err := config.ApplyEnv(cfg, config.NewEnv()); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg.ResolveCookieSource()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}
	SharedConfigContext.cfg = cfg
	return nil
}

func iAttemptToLoadTheConfiguration() error {
	SharedConfigContext.cfg, SharedConfigContext.loadErr = config.Load(SharedConfigContext.configPath)
	return nil
}

func expectConfig(name, expected, got string) error {
	if SharedConfigContext.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", name, expected, got)
	}
	return nil
}

func iShouldReceiveAnErrorAboutMissingConfiguration() error {
	if SharedConfigContext.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	return nil
}
