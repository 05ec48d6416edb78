package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"yt-clipper/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the server address, ffmpeg settings and
where the session cookie file comes from.`,
	// setup writes the config file, it must not require one
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to yt-clipper setup!")
	fmt.Println()

	cfg := config.Defaults()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}

	if err := promptCookies(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("HTTP listen address?", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to ffmpeg?", cfg.Audio.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.Audio.FFmpegPath = ffmpegPath
	}

	bitrate, err := prompter.Input("MP3 bitrate?", cfg.Audio.Bitrate)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate != "" {
		cfg.Audio.Bitrate = bitrate
	}
	return nil
}

func promptCookies(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Where should the cookie file be stored?", cfg.Cookies.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path != "" {
		cfg.Cookies.Path = path
	}

	source, err := prompter.Select("Where does the cookie file come from?",
		[]string{config.CookieSourceNone, config.CookieSourceHTTP, config.CookieSourceDrive},
		config.CookieSourceNone)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Cookies.Source = source

	switch source {
	case config.CookieSourceHTTP:
		blobURL, err := prompter.Input("Blob URL of the cookie file?", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if blobURL == "" {
			return fmt.Errorf("blob URL is required")
		}
		cfg.Cookies.BlobURL = blobURL

	case config.CookieSourceDrive:
		credentials, err := prompter.Input("Path to Google service account credentials?", "credentials.json")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if credentials == "" {
			credentials = "credentials.json"
		}
		cfg.Google.CredentialsFile = credentials

		fileID, err := prompter.Input("Google Drive file ID of the cookie file?", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if fileID == "" {
			return fmt.Errorf("file ID is required")
		}
		cfg.Cookies.DriveFileID = fileID
	}

	required, err := prompter.Confirm("Refuse clips when no cookie file is loaded?", cfg.Cookies.Required)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Cookies.Required = required
	return nil
}
