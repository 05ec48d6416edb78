//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-clipper/cmd"
	"yt-clipper/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	selection        string
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool, selection string) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
		selection:        selection,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selection == "" {
		return defaultValue, nil
	}
	return m.selection, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedSetupContext = &setupContext{}
		testCtx = SharedSetupContext
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, func() error { return testCtx.noConfigFileExistsForSetup() })
	ctx.Step(`^a config file already exists for setup$`, func() error { return testCtx.aConfigFileAlreadyExistsForSetup() })
	ctx.Step(`^I run the setup command with cookie source "([^"]*)" and inputs:$`, func(source string, table *godog.Table) error {
		return testCtx.iRunTheSetupCommandWithCookieSourceAndInputs(source, table)
	})
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, func(confirmation string) error {
		return testCtx.iRunTheSetupCommandWithConfirmation(confirmation)
	})
	ctx.Step(`^a config file should exist$`, func() error { return testCtx.aConfigFileShouldExist() })
	ctx.Step(`^the config should have server addr "([^"]*)"$`, func(addr string) error {
		return testCtx.theConfigShouldHave("server addr", addr, func(cfg *config.Config) string { return cfg.Server.Addr })
	})
	ctx.Step(`^the config should have blob url "([^"]*)"$`, func(url string) error {
		return testCtx.theConfigShouldHave("blob url", url, func(cfg *config.Config) string { return cfg.Cookies.BlobURL })
	})
	ctx.Step(`^the setup should be cancelled$`, func() error { return testCtx.theSetupShouldBeCancelled() })
	ctx.Step(`^the existing config should be unchanged$`, func() error { return testCtx.theExistingConfigShouldBeUnchanged() })
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `server:
  addr: ":7000"
cookies:
  path: "/var/lib/yt-clipper/cookies.json"
  source: "none"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithCookieSourceAndInputs(source string, table *godog.Table) error {
	var inputs []string
	for _, row := range table.Rows {
		inputs = append(inputs, strings.TrimSpace(row.Cells[0].Value))
	}

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, nil, source), s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "yes"
	prompter := NewMockPrompter([]string{}, []bool{confirm}, "")

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHave(name, expected string, field func(*config.Config) string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if got := field(cfg); got != expected {
		return fmt.Errorf("expected %s %q, got %q", name, expected, got)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if s.err != nil {
		return fmt.Errorf("unexpected error: %w", s.err)
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
