package cmd

import (
	"fmt"
	"os"

	"yt-clipper/infrastructure/config"
	"yt-clipper/infrastructure/logging"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "yt-clipper",
	Short: "Cut MP3 clips out of YouTube videos",
	Long: `yt-clipper looks up YouTube videos and cuts time windows of their audio
into MP3 clips:

  - Show a video's title, duration and 30 second segments
  - Stream a clip of any window as MP3
  - Serve both over HTTP
  - Keep the session cookies used for upstream requests fresh

Example:
  yt-clipper clip "https://youtu.be/dQw4w9WgXcQ" --start 1:00 --end 1:30`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// initConfig loads the configuration and sets up logging
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cfgFile, logLevel)
	if err != nil {
		return err
	}

	cfg = loaded
	logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return nil
}

// loadConfig reads path, applies environment overrides and validates the result.
// A missing config file is not an error; defaults apply.
func loadConfig(path, level string) (*config.Config, error) {
	loaded, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(loaded, config.NewEnv()); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if level != "" {
		loaded.Log.Level = level
	}
	loaded.ResolveCookieSource()

	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, nil
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
